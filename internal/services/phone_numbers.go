package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-contracts/internal/models"
	"gorm.io/gorm"
)

// DefaultAvailableLimit is the number of suggestions Available returns when
// no limit is given.
const DefaultAvailableLimit = 5

// PhoneNumbers manages the number inventory.
type PhoneNumbers struct {
	db *gorm.DB
}

func NewPhoneNumbers(db *gorm.DB) *PhoneNumbers {
	return &PhoneNumbers{db: db}
}

// Available lists available numbers, optionally only those stocked for
// offerID. limit <= 0 means DefaultAvailableLimit.
func (p *PhoneNumbers) Available(ctx context.Context, offerID uint, limit int) ([]models.PhoneNumber, error) {
	if limit <= 0 {
		limit = DefaultAvailableLimit
	}
	q := p.db.WithContext(ctx).Where("status = ?", models.PhoneNumberAvailable)
	if offerID != 0 {
		q = q.Where("offer_id = ?", offerID)
	}
	var out []models.PhoneNumber
	return out, q.Order("number").Limit(limit).Find(&out).Error
}

// Get loads a number by its value.
func (p *PhoneNumbers) Get(ctx context.Context, number string) (*models.PhoneNumber, error) {
	var pn models.PhoneNumber
	if err := p.db.WithContext(ctx).Where("number = ?", number).First(&pn).Error; err != nil {
		return nil, notFound(err, "phone number "+number)
	}
	return &pn, nil
}

// Release returns an assigned or reserved number to the available pool.
func (p *PhoneNumbers) Release(ctx context.Context, number string) (*models.PhoneNumber, error) {
	var pn models.PhoneNumber
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("number = ?", number).First(&pn).Error; err != nil {
			return notFound(err, "phone number "+number)
		}
		if pn.Status == models.PhoneNumberBlocked {
			return fmt.Errorf("phone number %s is blocked", number)
		}
		pn.Release()
		return tx.Omit("Offer").Save(&pn).Error
	})
	if err != nil {
		return nil, err
	}
	return &pn, nil
}

// Counts returns the number of phone numbers per status.
func (p *PhoneNumbers) Counts(ctx context.Context) (map[models.PhoneNumberStatus]int64, error) {
	type row struct {
		Status models.PhoneNumberStatus
		Count  int64
	}
	var rows []row
	err := p.db.WithContext(ctx).Model(&models.PhoneNumber{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.PhoneNumberStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
