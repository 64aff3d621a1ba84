package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-contracts/internal/models"
	"github.com/diewo77/go-contracts/internal/validation"
	"gorm.io/gorm"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ContractStore persists contracts and owns their status transitions.
type ContractStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db, now: time.Now}
}

// ValidateContract checks the fields required to create a contract.
func ValidateContract(c *models.Contract) validation.Violations {
	v := validation.Violations{}
	validation.Required("customer_first_name", c.FirstName, v)
	validation.Required("customer_last_name", c.LastName, v)
	validation.Required("customer_nin", c.NIN, v)
	validation.Required("customer_id_number", c.IDNumber, v)
	validation.MaxLen("customer_first_name", c.FirstName, 100, v)
	validation.MaxLen("customer_last_name", c.LastName, 100, v)
	validation.MaxLen("customer_address", c.Address, 500, v)
	validation.Pattern("customer_email", c.Email, emailRe, v)
	if c.OfferID == 0 {
		v["offer"] = "required"
	}
	if c.PhoneNumberID == 0 {
		v["phone_number"] = "required"
	}
	return v
}

// Create stores a new draft contract and assigns its phone number to the
// customer in the same transaction. A number that is not available is
// never taken over; Create fails with ErrNumberUnavailable instead.
func (s *ContractStore) Create(ctx context.Context, c *models.Contract) error {
	if err := ValidateContract(c).Err(); err != nil {
		return err
	}
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.First(&offer, c.OfferID).Error; err != nil {
			return notFound(err, fmt.Sprintf("offer %d", c.OfferID))
		}
		var phone models.PhoneNumber
		if err := tx.First(&phone, c.PhoneNumberID).Error; err != nil {
			return notFound(err, fmt.Sprintf("phone number %d", c.PhoneNumberID))
		}
		if err := phone.AssignTo(c.FullName(), c.NIN, now); err != nil {
			return fmt.Errorf("%s: %w", phone.Number, err)
		}
		// Conditional update so concurrent creations cannot both take the number.
		res := tx.Model(&models.PhoneNumber{}).
			Where("id = ? AND status = ?", phone.ID, models.PhoneNumberAvailable).
			Updates(map[string]any{
				"status":           phone.Status,
				"assigned_to_name": phone.AssignedToName,
				"assigned_to_nin":  phone.AssignedToNIN,
				"assigned_date":    phone.AssignedDate,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%s: %w", phone.Number, ErrNumberUnavailable)
		}

		if c.Number == "" {
			number, err := s.freeNumber(tx, now)
			if err != nil {
				return err
			}
			c.Number = number
		}
		c.Status = models.ContractStatusDraft
		if err := tx.Omit("Offer", "PhoneNumber", "CreatedBy").Create(c).Error; err != nil {
			return fmt.Errorf("create contract: %w", err)
		}
		c.Offer = &offer
		c.PhoneNumber = &phone
		return nil
	})
}

func (s *ContractStore) freeNumber(tx *gorm.DB, now time.Time) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		n := models.GenerateContractNumber(now)
		var count int64
		if err := tx.Model(&models.Contract{}).Unscoped().Where("number = ?", n).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return n, nil
		}
	}
	return "", fmt.Errorf("no free contract number for %s", now.Format("2006-01-02"))
}

// GetByNumber loads a contract with its offer and phone number.
func (s *ContractStore) GetByNumber(ctx context.Context, number string) (*models.Contract, error) {
	var c models.Contract
	err := s.db.WithContext(ctx).
		Preload("Offer").
		Preload("PhoneNumber").
		Preload("CreatedBy").
		Where("number = ?", number).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "contract "+number)
	}
	return &c, nil
}

// List returns contracts, newest first, optionally filtered by status.
func (s *ContractStore) List(ctx context.Context, status models.ContractStatus) ([]models.Contract, error) {
	q := s.db.WithContext(ctx).Preload("Offer").Preload("PhoneNumber").Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Contract
	return out, q.Find(&out).Error
}

// ListMissingPDF returns signed or validated contracts without a stored document.
func (s *ContractStore) ListMissingPDF(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	err := s.db.WithContext(ctx).
		Where("status IN ? AND (pdf_key = '' OR pdf_key IS NULL)", []models.ContractStatus{models.ContractStatusSigned, models.ContractStatusValidated}).
		Order("id").
		Find(&out).Error
	return out, err
}

// Sign records the captured signature and moves the contract to signed.
// An empty payload keeps a signature stored earlier; a contract with no
// signature at all cannot be signed.
func (s *ContractStore) Sign(ctx context.Context, number, signatureBase64 string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error {
		if signatureBase64 != "" {
			c.SignatureBase64 = signatureBase64
		}
		if c.Status == models.ContractStatusDraft && !c.HasSignature() {
			return validation.Violations{"signature": "required"}
		}
		return c.MarkSigned(s.now())
	})
}

// Validate moves a signed contract to validated.
func (s *ContractStore) Validate(ctx context.Context, number string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error { return c.Validate(s.now()) })
}

// Cancel cancels the contract. The phone number stays assigned until it is
// released explicitly.
func (s *ContractStore) Cancel(ctx context.Context, number string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error { return c.Cancel(s.now()) })
}

// AttachPDF records the asset key of the generated document.
func (s *ContractStore) AttachPDF(ctx context.Context, number, key string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error {
		c.PDFKey = key
		return nil
	})
}

// AttachPhoto records the asset key of the customer photo. Only drafts
// accept a photo.
func (s *ContractStore) AttachPhoto(ctx context.Context, number, key string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error {
		if !c.CanEdit() {
			return fmt.Errorf("%w: photo on %s contract", ErrInvalidTransition, c.Status)
		}
		c.PhotoKey = key
		return nil
	})
}

// MarkEmailSent flags the contract as sent to the customer email.
func (s *ContractStore) MarkEmailSent(ctx context.Context, number string) (*models.Contract, error) {
	return s.update(ctx, number, func(c *models.Contract) error {
		if c.Email == "" {
			return ErrNoEmail
		}
		c.MarkEmailSent(s.now())
		return nil
	})
}

func (s *ContractStore) update(ctx context.Context, number string, apply func(*models.Contract) error) (*models.Contract, error) {
	var c models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("number = ?", number).First(&c).Error; err != nil {
			return notFound(err, "contract "+number)
		}
		if err := apply(&c); err != nil {
			return fmt.Errorf("contract %s: %w", number, err)
		}
		return tx.Omit("Offer", "PhoneNumber", "CreatedBy").Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Stats summarizes contracts by status and by offer name.
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByOffer  map[string]int64 `json:"by_offer"`
}

func (s *ContractStore) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	st := Stats{ByStatus: map[string]int64{}, ByOffer: map[string]int64{}}
	if err := db.Model(&models.Contract{}).Count(&st.Total).Error; err != nil {
		return st, err
	}

	type bucket struct {
		Label string
		Count int64
	}
	var rows []bucket
	if err := db.Model(&models.Contract{}).Select("status AS label, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return st, err
	}
	for _, r := range rows {
		st.ByStatus[r.Label] = r.Count
	}

	rows = nil
	err := db.Model(&models.Contract{}).
		Select("offers.name AS label, COUNT(*) AS count").
		Joins("JOIN offers ON offers.id = contracts.offer_id").
		Group("offers.name").
		Scan(&rows).Error
	if err != nil {
		return st, err
	}
	for _, r := range rows {
		st.ByOffer[r.Label] = r.Count
	}
	return st, nil
}
