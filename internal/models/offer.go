package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurrencyDZD is the Algerian dinar, the only currency offers are sold in today.
const CurrencyDZD = "DZD"

// Offer is a subscription plan from the catalog.
type Offer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Code        string  `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency    string  `gorm:"size:3;default:'DZD'" json:"currency"`

	// Allowances
	DataAllowanceMB int `gorm:"not null;default:0" json:"data_allowance_mb"`
	VoiceMinutes    int `gorm:"not null;default:0" json:"voice_minutes"`
	SMSCount        int `gorm:"not null;default:0" json:"sms_count"`
	ValidityDays    int `gorm:"not null;default:30" json:"validity_days"`

	// Features is the ordered list of benefits printed on the contract.
	Features datatypes.JSONSlice[string] `json:"features"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	IsFeatured   bool `gorm:"default:false" json:"is_featured"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`
}

// FeatureList returns a copy of the offer features.
func (o *Offer) FeatureList() []string {
	if len(o.Features) == 0 {
		return nil
	}
	out := make([]string, len(o.Features))
	copy(out, o.Features)
	return out
}
