package services

import (
	"errors"
	"log"

	"star-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewShopService(db *gorm.DB, ledger *LedgerService) *ShopService {
	return &ShopService{DB: db, Ledger: ledger}
}

// Purchase debits the prize cost and logs the redemption. A purchase exactly
// at balance == cost succeeds and leaves the balance at zero.
func (s *ShopService) Purchase(externalUserID, prizeID string) (*models.Purchase, error) {
	var prize models.Prize
	if err := s.DB.First(&prize, "id = ?", prizeID).Error; err != nil {
		return nil, err
	}

	if _, err := s.Ledger.Debit(externalUserID, prize.CostInStars); err != nil {
		return nil, err
	}

	purchase := models.Purchase{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		PrizeID:        prize.ID,
	}
	if err := s.DB.Create(&purchase).Error; err != nil {
		return nil, err
	}

	log.Printf("[SHOP] %s bought %q for %d ⭐", externalUserID, prize.Name, prize.CostInStars)
	return &purchase, nil
}

// --- Handlers ---

// ListPrizes returns the prize catalog plus the caller's balance.
func (s *ShopService) ListPrizes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var prizes []models.Prize
	if err := s.DB.Order("created_at ASC").Find(&prizes).Error; err != nil {
		log.Printf("DB Error fetching prizes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch prizes"})
	}

	var profile models.UserProfile
	if err := s.DB.Where("external_user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{
		"prizes": prizes,
		"stars":  profile.Stars,
	})
}

// PurchaseEndpoint handles POST /s/shop/:id/purchase.
func (s *ShopService) PurchaseEndpoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	prizeID := c.Params("id")
	if _, err := uuid.Parse(prizeID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize ID"})
	}

	purchase, err := s.Purchase(userID, prizeID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize not found"})
	case errors.Is(err, ErrInsufficientBalance):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Not enough stars for this purchase!"})
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	case err != nil:
		log.Printf("DB Error purchasing prize: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to purchase prize"})
	}

	return c.JSON(fiber.Map{
		"message":  "You successfully purchased the prize!",
		"purchase": purchase,
	})
}
