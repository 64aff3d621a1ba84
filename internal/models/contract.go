package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractStatus represents the lifecycle status of a contract.
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusValidated ContractStatus = "validated"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid contract status transition")

// Contract binds a customer, an offer and a phone number.
type Contract struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Public identifier, stable across environments.
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"uuid"`

	// Contract identification
	Number string `gorm:"size:50;uniqueIndex;not null" json:"contract_number"`

	// Customer identity (from the ID card)
	FirstName    string     `gorm:"size:100;not null" json:"customer_first_name"`
	LastName     string     `gorm:"size:100;not null" json:"customer_last_name"`
	FirstNameAr  string     `gorm:"size:100" json:"customer_first_name_ar,omitempty"`
	LastNameAr   string     `gorm:"size:100" json:"customer_last_name_ar,omitempty"`
	BirthDate    *time.Time `json:"customer_birth_date,omitempty"`
	BirthPlace   string     `gorm:"size:200" json:"customer_birth_place,omitempty"`
	BirthPlaceAr string     `gorm:"size:200" json:"customer_birth_place_ar,omitempty"`
	Sex          string     `gorm:"size:10" json:"customer_sex,omitempty"`
	BloodType    string     `gorm:"size:5" json:"customer_blood_type,omitempty"`
	NIN          string     `gorm:"size:50;not null" json:"customer_nin"`
	IDNumber     string     `gorm:"size:50;not null" json:"customer_id_number"`
	IDExpiry     *time.Time `json:"customer_id_expiry,omitempty"`
	Daira        string     `gorm:"size:100" json:"customer_daira,omitempty"`
	Baladia      string     `gorm:"size:100" json:"customer_baladia,omitempty"`

	// Contact
	Phone       string     `gorm:"size:20" json:"customer_phone,omitempty"`
	Email       string     `gorm:"size:255" json:"customer_email,omitempty"`
	Address     string     `gorm:"size:500" json:"customer_address,omitempty"`
	EmailSent   bool       `gorm:"default:false" json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`

	// Relations
	OfferID       uint         `gorm:"index;not null" json:"offer"`
	Offer         *Offer       `gorm:"foreignKey:OfferID" json:"offer_detail,omitempty"`
	PhoneNumberID uint         `gorm:"index;not null" json:"phone_number"`
	PhoneNumber   *PhoneNumber `gorm:"foreignKey:PhoneNumberID" json:"phone_number_detail,omitempty"`

	// Files: keys in the asset store
	SignatureBase64 string `gorm:"type:text" json:"signature_base64,omitempty"`
	PhotoKey        string `gorm:"size:500" json:"customer_photo,omitempty"`
	PDFKey          string `gorm:"size:500" json:"pdf_file,omitempty"`

	// Status
	Status      ContractStatus `gorm:"size:20;default:'draft';index" json:"status"`
	SignedAt    *time.Time     `json:"signed_at,omitempty"`
	ValidatedAt *time.Time     `json:"validated_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`

	CreatedByID *uint `gorm:"index" json:"created_by,omitempty"`
	CreatedBy   *User `gorm:"foreignKey:CreatedByID" json:"-"`
}

// BeforeCreate fills the public UUID and the contract number when missing.
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Number == "" {
		c.Number = GenerateContractNumber(time.Now())
	}
	return nil
}

// FullName returns "First Last".
func (c *Contract) FullName() string {
	return joinNonEmpty(" ", c.FirstName, c.LastName)
}

// HasSignature reports whether a signature payload was captured.
func (c *Contract) HasSignature() bool {
	return strings.TrimSpace(c.SignatureBase64) != ""
}

// CanEdit returns true while the contract is still a draft.
func (c *Contract) CanEdit() bool {
	return c.Status == ContractStatusDraft
}

// MarkSigned moves a draft to signed and records the time.
func (c *Contract) MarkSigned(at time.Time) error {
	if c.Status != ContractStatusDraft {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, ContractStatusSigned)
	}
	c.Status = ContractStatusSigned
	c.SignedAt = &at
	return nil
}

// Validate moves a signed contract to validated.
func (c *Contract) Validate(at time.Time) error {
	if c.Status != ContractStatusSigned {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, ContractStatusValidated)
	}
	c.Status = ContractStatusValidated
	c.ValidatedAt = &at
	return nil
}

// Cancel cancels the contract from any non-cancelled state.
func (c *Contract) Cancel(at time.Time) error {
	if c.Status == ContractStatusCancelled {
		return fmt.Errorf("%w: already cancelled", ErrInvalidTransition)
	}
	c.Status = ContractStatusCancelled
	c.CancelledAt = &at
	return nil
}

// MarkEmailSent records that the contract was emailed to the customer.
func (c *Contract) MarkEmailSent(at time.Time) {
	c.EmailSent = true
	c.EmailSentAt = &at
}

// GenerateContractNumber returns a contract number for the given day.
// Format: DJ-YYYYMMDD-NNNN (e.g., DJ-20240101-1234)
func GenerateContractNumber(now time.Time) string {
	return fmt.Sprintf("DJ-%s-%04d", now.Format("20060102"), 1000+rand.IntN(9000))
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
