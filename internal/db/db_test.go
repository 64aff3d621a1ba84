package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/go-contracts/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)

	first, err := Seed(d, 40, 1)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.Offers != len(DefaultOffers()) {
		t.Fatalf("created %d offers, want %d", first.Offers, len(DefaultOffers()))
	}
	if first.PhoneNumbers != 40 {
		t.Fatalf("created %d numbers, want 40", first.PhoneNumbers)
	}

	second, err := Seed(d, 0, 1)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if second.Offers != 0 {
		t.Fatalf("reseed created %d offers, want 0", second.Offers)
	}

	var n int64
	d.Model(&models.Offer{}).Where("code = ?", "LEGEND1500").Count(&n)
	if n != 1 {
		t.Fatalf("LEGEND1500 count = %d, want 1", n)
	}

	var numbers []models.PhoneNumber
	d.Find(&numbers)
	for _, p := range numbers {
		if !models.PhoneNumberPattern.MatchString(p.Number) {
			t.Errorf("seeded number %q does not match pattern", p.Number)
		}
		if p.Status != models.PhoneNumberAvailable || p.OfferID == nil {
			t.Errorf("seeded number %q has status %q offer %v", p.Number, p.Status, p.OfferID)
		}
	}
}

func TestSeedOfferFeaturesRoundTrip(t *testing.T) {
	d := openTestDB(t)
	if _, err := Seed(d, 0, 1); err != nil {
		t.Fatal(err)
	}
	var o models.Offer
	if err := d.Where("code = ?", "LEGEND1500").First(&o).Error; err != nil {
		t.Fatal(err)
	}
	if len(o.Features) != 3 || o.Features[0] != "Appels illimites vers Djezzy" {
		t.Fatalf("features = %v", o.Features)
	}
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		n, total int
		want     []int
	}{
		{0, 10, nil},
		{1, 10, []int{10}},
		{3, 10, []int{2, 4, 4}},
		{8, 200, nil},
	}
	for _, tt := range tests {
		got := Distribute(tt.n, tt.total)
		sum := 0
		for _, c := range got {
			sum += c
		}
		if tt.n > 0 && sum != tt.total {
			t.Errorf("Distribute(%d, %d) sums to %d", tt.n, tt.total, sum)
		}
		if tt.want != nil && fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("Distribute(%d, %d) = %v, want %v", tt.n, tt.total, got, tt.want)
		}
	}
	got := Distribute(8, 200)
	if got[3] <= got[0] {
		t.Errorf("middle offers should get more numbers: %v", got)
	}
}

func TestMaskDSN(t *testing.T) {
	got := MaskDSN("host=db user=u password=secret dbname=x")
	if strings.Contains(got, "secret") || !strings.Contains(got, "password=***") {
		t.Errorf("MaskDSN() = %q", got)
	}
}

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "000001_init.down.sql" || names[1] != "000001_init.up.sql" {
		t.Fatalf("MigrationNames() = %v", names)
	}
}
