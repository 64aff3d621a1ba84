// Package pdf renders subscription contracts as A4 PDF documents.
//
// A render is a pure function of a ContractData bundle and the static
// assets (logo, Arabic font). Missing or corrupt optional data never fails
// a render; each field has a placeholder.
package pdf

import (
	"strings"
	"time"
)

// ContractData is everything the renderer needs, resolved by the caller.
type ContractData struct {
	Number    string
	CreatedAt time.Time
	Status    string

	Client ClientData
	Offer  *OfferData
	Phone  *PhoneData

	// SignatureBase64 may carry a data URL prefix (data:image/png;base64,).
	SignatureBase64 string

	// Photo takes precedence over PhotoPath.
	Photo     []byte
	PhotoPath string
}

// ClientData holds the customer identity and contact fields.
type ClientData struct {
	FirstName    string
	LastName     string
	FirstNameAr  string
	LastNameAr   string
	BirthDate    *time.Time
	BirthPlace   string
	BirthPlaceAr string
	Sex          string
	BloodType    string
	NIN          string
	IDNumber     string
	IDExpiry     *time.Time
	Daira        string
	Baladia      string

	Phone   string
	Email   string
	Address string
}

// FullName returns "First Last" without surrounding blanks.
func (c ClientData) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// OfferData holds the subscribed offer.
type OfferData struct {
	Name         string
	Price        float64
	Currency     string
	DataMB       int
	VoiceMinutes int
	SMSCount     int
	ValidityDays int
	Features     []string
}

// PhoneData holds the assigned number.
type PhoneData struct {
	Number string
	Status string
}
