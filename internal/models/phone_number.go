package models

import (
	"errors"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// PhoneNumberStatus is the inventory status of a phone number.
type PhoneNumberStatus string

const (
	PhoneNumberAvailable PhoneNumberStatus = "available"
	PhoneNumberAssigned  PhoneNumberStatus = "assigned"
	PhoneNumberReserved  PhoneNumberStatus = "reserved"
	PhoneNumberBlocked   PhoneNumberStatus = "blocked"
)

// PhoneNumberPattern is the accepted national format: 07 followed by 8 digits.
var PhoneNumberPattern = regexp.MustCompile(`^07[0-9]{8}$`)

// ErrNumberUnavailable is returned when assigning a number that is not available.
var ErrNumberUnavailable = errors.New("phone number is not available")

// PhoneNumber is a SIM number from the assignable inventory.
type PhoneNumber struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Number string            `gorm:"size:10;uniqueIndex;not null" json:"number"`
	Status PhoneNumberStatus `gorm:"size:20;default:'available';index" json:"status"`

	// Offer the number is stocked for, if any.
	OfferID *uint  `gorm:"index" json:"offer_id,omitempty"`
	Offer   *Offer `gorm:"foreignKey:OfferID" json:"offer,omitempty"`

	AssignedToName string     `gorm:"size:200" json:"assigned_to_name,omitempty"`
	AssignedToNIN  string     `gorm:"size:50" json:"assigned_to_nin,omitempty"`
	AssignedDate   *time.Time `json:"assigned_date,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
}

// IsAvailable returns true if the number can be assigned.
func (p *PhoneNumber) IsAvailable() bool {
	return p.Status == PhoneNumberAvailable
}

// AssignTo marks the number as assigned to a customer.
// Numbers that are not available are never force-assigned.
func (p *PhoneNumber) AssignTo(name, nin string, at time.Time) error {
	if !p.IsAvailable() {
		return ErrNumberUnavailable
	}
	p.Status = PhoneNumberAssigned
	p.AssignedToName = name
	p.AssignedToNIN = nin
	p.AssignedDate = &at
	return nil
}

// Release makes the number available again and clears the assignment.
func (p *PhoneNumber) Release() {
	p.Status = PhoneNumberAvailable
	p.AssignedToName = ""
	p.AssignedToNIN = ""
	p.AssignedDate = nil
}
