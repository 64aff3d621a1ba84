package db

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/diewo77/go-contracts/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Unlimited voice minutes marker used by the catalog.
const unlimitedMinutes = 99999

// phonePrefixes are the mobile prefixes numbers are drawn from.
var phonePrefixes = []string{"0770", "0771", "0772", "0773", "0774", "0775", "0776", "0777", "0778", "0779"}

// DefaultOffers is the LEGEND catalog.
func DefaultOffers() []models.Offer {
	offer := func(name, code, desc string, price float64, dataMB, voice, sms, days int, featured bool, order int, features ...string) models.Offer {
		return models.Offer{
			Name: name, Code: code, Description: desc, Price: price, Currency: models.CurrencyDZD,
			DataAllowanceMB: dataMB, VoiceMinutes: voice, SMSCount: sms, ValidityDays: days,
			Features: datatypes.JSONSlice[string](features), IsActive: true, IsFeatured: featured, DisplayOrder: order,
		}
	}
	return []models.Offer{
		offer("LEGEND 2500", "LEGEND2500", "Offre premium avec appels illimites vers tous les reseaux nationaux", 2500, 102400, unlimitedMinutes, 100, 30, true, 1,
			"Appels illimites vers tous reseaux", "Internet haut debit 4G", "SMS illimites Djezzy", "100 SMS vers autres operateurs"),
		offer("LEGEND 2000", "LEGEND2000", "Offre complete avec 70 Go et appels illimites", 2000, 71680, unlimitedMinutes, 50, 30, true, 2,
			"Appels illimites vers tous reseaux", "Internet haut debit 4G", "SMS illimites Djezzy", "50 SMS vers autres operateurs"),
		offer("LEGEND 1500", "LEGEND1500", "Offre avantageuse avec 50 Go et appels illimites Djezzy", 1500, 51200, unlimitedMinutes, 100, 30, true, 3,
			"Appels illimites vers Djezzy", "Internet 4G", "SMS illimites Djezzy"),
		offer("LEGEND 1000", "LEGEND1000", "Offre equilibree avec 30 Go", 1000, 30720, unlimitedMinutes, 100, 30, false, 4,
			"Appels illimites vers Djezzy", "Internet 4G", "SMS illimites Djezzy"),
		offer("LEGEND 500", "LEGEND500", "Offre mensuelle economique avec 10 Go", 500, 10240, 500, 100, 30, false, 5,
			"500 min vers Djezzy", "Internet mobile 4G", "100 SMS"),
		offer("LEGEND 150", "LEGEND150", "Offre hebdomadaire avec 5 Go", 150, 5120, 100, 50, 7, false, 6,
			"100 min vers Djezzy", "Internet mobile", "50 SMS"),
		offer("LEGEND 100", "LEGEND100", "Offre 3 jours avec 3 Go", 100, 3072, 50, 30, 3, false, 7,
			"50 min vers Djezzy", "Internet mobile", "30 SMS"),
		offer("LEGEND 50", "LEGEND50", "Offre journaliere avec 1 Go", 50, 1024, 20, 20, 1, false, 8,
			"20 min vers Djezzy", "Internet mobile", "20 SMS"),
	}
}

// SeedResult reports what Seed created.
type SeedResult struct {
	Offers       int
	PhoneNumbers int
}

// Seed loads the offer catalog and a pool of phone numbers. It is idempotent:
// offers are matched by code and numbers by value.
func Seed(db *gorm.DB, poolSize int, seed uint64) (SeedResult, error) {
	var res SeedResult
	for _, o := range DefaultOffers() {
		var existing models.Offer
		err := db.Where("code = ?", o.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&o).Error; err != nil {
				return res, fmt.Errorf("seed offer %s: %w", o.Code, err)
			}
			res.Offers++
		case err != nil:
			return res, err
		}
	}

	var offers []models.Offer
	if err := db.Where("is_active = ?", true).Order("price").Find(&offers).Error; err != nil {
		return res, err
	}
	counts := Distribute(len(offers), poolSize)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i, o := range offers {
		for n := 0; n < counts[i]; n++ {
			created, err := createUniqueNumber(db, rng, o.ID)
			if err != nil {
				return res, err
			}
			if created {
				res.PhoneNumbers++
			}
		}
	}
	return res, nil
}

func createUniqueNumber(db *gorm.DB, rng *rand.Rand, offerID uint) (bool, error) {
	for attempt := 0; attempt < 100; attempt++ {
		number := fmt.Sprintf("%s%06d", phonePrefixes[rng.IntN(len(phonePrefixes))], rng.IntN(1000000))
		if !models.PhoneNumberPattern.MatchString(number) {
			return false, fmt.Errorf("seed phone number %q: malformed", number)
		}
		var count int64
		if err := db.Model(&models.PhoneNumber{}).Where("number = ?", number).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			continue
		}
		id := offerID
		p := models.PhoneNumber{Number: number, Status: models.PhoneNumberAvailable, OfferID: &id}
		if err := db.Create(&p).Error; err != nil {
			return false, fmt.Errorf("seed phone number: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// Distribute splits total across n price-ordered offers with more weight on
// the middle of the range. The last offer receives the remainder.
func Distribute(n, total int) []int {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []int{total}
	}
	weights := make([]float64, n)
	var sum float64
	middle := float64(n-1) / 2
	for i := range weights {
		weights[i] = math.Max(1, 3-math.Abs(float64(i)-middle))
		sum += weights[i]
	}
	out := make([]int, n)
	remaining := total
	for i := 0; i < n-1; i++ {
		out[i] = int(float64(total) * weights[i] / sum)
		remaining -= out[i]
	}
	out[n-1] = remaining
	return out
}
