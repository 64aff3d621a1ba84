package services

import (
	"bytes"
	"encoding/base64"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/diewo77/go-contracts/internal/assets"
	"github.com/diewo77/go-contracts/internal/models"
	"github.com/diewo77/go-contracts/internal/pdf"
	"github.com/diewo77/go-contracts/internal/validation"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

const testSignature = "data:image/png;base64,AAAA"

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Offer{}, &models.PhoneNumber{}, &models.Contract{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newStore(db *gorm.DB) *ContractStore {
	s := NewContractStore(db)
	s.now = func() time.Time { return fixedNow }
	return s
}

func seedInventory(t *testing.T, db *gorm.DB, numbers ...string) (models.Offer, []models.PhoneNumber) {
	t.Helper()
	offer := models.Offer{Name: "LEGEND 1500", Code: "LEGEND1500", Price: 1500, Currency: models.CurrencyDZD,
		DataAllowanceMB: 51200, VoiceMinutes: 99999, SMSCount: 100, ValidityDays: 30, IsActive: true}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	var phones []models.PhoneNumber
	for _, n := range numbers {
		id := offer.ID
		p := models.PhoneNumber{Number: n, Status: models.PhoneNumberAvailable, OfferID: &id}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed phone: %v", err)
		}
		phones = append(phones, p)
	}
	return offer, phones
}

func newContract(offer models.Offer, phone models.PhoneNumber) *models.Contract {
	return &models.Contract{
		FirstName: "Amine", LastName: "Benali",
		NIN: "109990123456789012", IDNumber: "123456789",
		Email:   "amine@example.dz",
		OfferID: offer.ID, PhoneNumberID: phone.ID,
	}
}

func TestContractStoreCreate(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770123456")

	c := newContract(offer, phones[0])
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !regexp.MustCompile(`^DJ-20240101-[0-9]{4}$`).MatchString(c.Number) {
		t.Errorf("Number = %q", c.Number)
	}
	if c.Status != models.ContractStatusDraft {
		t.Errorf("Status = %q, want draft", c.Status)
	}

	var p models.PhoneNumber
	db.First(&p, phones[0].ID)
	if p.Status != models.PhoneNumberAssigned || p.AssignedToName != "Amine Benali" || p.AssignedToNIN != c.NIN {
		t.Fatalf("phone not assigned: %+v", p)
	}

	got, err := store.GetByNumber(context.Background(), c.Number)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Offer == nil || got.Offer.Name != "LEGEND 1500" || got.PhoneNumber == nil || got.PhoneNumber.Number != "0770123456" {
		t.Fatalf("relations not loaded: %+v", got)
	}
}

func TestContractStoreCreateNeverForceAssigns(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770123456")
	ctx := context.Background()

	if err := store.Create(ctx, newContract(offer, phones[0])); err != nil {
		t.Fatal(err)
	}
	err := store.Create(ctx, newContract(offer, phones[0]))
	if !errors.Is(err, ErrNumberUnavailable) {
		t.Fatalf("err = %v, want ErrNumberUnavailable", err)
	}
	var count int64
	db.Model(&models.Contract{}).Count(&count)
	if count != 1 {
		t.Fatalf("contracts = %d, want 1", count)
	}
}

func TestContractStoreCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)

	err := store.Create(context.Background(), &models.Contract{FirstName: "A", Email: "nope"})
	var v validation.Violations
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want validation.Violations", err)
	}
	for field, code := range map[string]string{
		"customer_last_name": "required",
		"customer_nin":       "required",
		"customer_email":     "invalid_format",
		"offer":              "required",
		"phone_number":       "required",
	} {
		if v[field] != code {
			t.Errorf("violation[%s] = %q, want %q", field, v[field], code)
		}
	}

	err = store.Create(context.Background(), &models.Contract{FirstName: "A", LastName: "B", NIN: "1", IDNumber: "2", OfferID: 99, PhoneNumberID: 99})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContractStoreTransitions(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770123456")
	ctx := context.Background()

	c := newContract(offer, phones[0])
	c.Number = "DJ-20240101-1234"
	if err := store.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Validate(ctx, c.Number); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("validate draft err = %v, want ErrInvalidTransition", err)
	}
	signed, err := store.Sign(ctx, c.Number, testSignature)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signed.Status != models.ContractStatusSigned || signed.SignedAt == nil || signed.SignatureBase64 == "" {
		t.Fatalf("unexpected signed contract: %+v", signed)
	}
	if _, err := store.Sign(ctx, c.Number, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second sign err = %v, want ErrInvalidTransition", err)
	}
	if _, err := store.Validate(ctx, c.Number); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cancelled, err := store.Cancel(ctx, c.Number)
	if err != nil || cancelled.Status != models.ContractStatusCancelled {
		t.Fatalf("cancel: %v %+v", err, cancelled)
	}
	if _, err := store.Cancel(ctx, c.Number); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second cancel err = %v", err)
	}

	reloaded, _ := store.GetByNumber(ctx, c.Number)
	if reloaded.Status != models.ContractStatusCancelled || reloaded.ValidatedAt == nil {
		t.Fatalf("state not persisted: %+v", reloaded)
	}
	if _, err := store.GetByNumber(ctx, "DJ-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContractStoreMarkEmailSent(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770123456", "0770123457")
	ctx := context.Background()

	with := newContract(offer, phones[0])
	without := newContract(offer, phones[1])
	without.Email = ""
	for _, c := range []*models.Contract{with, without} {
		if err := store.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.MarkEmailSent(ctx, with.Number)
	if err != nil || !got.EmailSent || got.EmailSentAt == nil {
		t.Fatalf("MarkEmailSent: %v %+v", err, got)
	}
	if _, err := store.MarkEmailSent(ctx, without.Number); !errors.Is(err, ErrNoEmail) {
		t.Fatalf("err = %v, want ErrNoEmail", err)
	}
}

func TestContractStoreStats(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770000001", "0770000002", "0770000003")
	ctx := context.Background()

	var numbers []string
	for _, p := range phones {
		c := newContract(offer, p)
		if err := store.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		numbers = append(numbers, c.Number)
	}
	if _, err := store.Sign(ctx, numbers[0], testSignature); err != nil {
		t.Fatal(err)
	}

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 || st.ByStatus["draft"] != 2 || st.ByStatus["signed"] != 1 || st.ByOffer["LEGEND 1500"] != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestPhoneNumbers(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	phonesSvc := NewPhoneNumbers(db)
	offer, phones := seedInventory(t, db, "0770000001", "0770000002", "0770000003", "0770000004", "0770000005", "0770000006", "0770000007")
	ctx := context.Background()

	avail, err := phonesSvc.Available(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(avail) != DefaultAvailableLimit || avail[0].Number != "0770000001" {
		t.Fatalf("Available() = %d numbers starting %v", len(avail), avail)
	}

	if err := store.Create(ctx, newContract(offer, phones[0])); err != nil {
		t.Fatal(err)
	}
	avail, _ = phonesSvc.Available(ctx, offer.ID, 10)
	if len(avail) != 6 {
		t.Fatalf("after assignment Available() = %d, want 6", len(avail))
	}
	counts, err := phonesSvc.Counts(ctx)
	if err != nil || counts[models.PhoneNumberAssigned] != 1 || counts[models.PhoneNumberAvailable] != 6 {
		t.Fatalf("Counts() = %v, %v", counts, err)
	}

	released, err := phonesSvc.Release(ctx, "0770000001")
	if err != nil {
		t.Fatal(err)
	}
	if !released.IsAvailable() || released.AssignedToName != "" {
		t.Fatalf("release left %+v", released)
	}
	if _, err := phonesSvc.Release(ctx, "0799999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func signaturePNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 80, 30))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + encodeBase64(buf.Bytes())
}

func newService(t *testing.T, db *gorm.DB) (*ContractService, *assets.LocalStore) {
	local := assets.NewLocalStore(t.TempDir())
	renderer := pdf.NewRenderer(pdf.Options{Lang: "fr", Shaper: pdf.ArabicShaper{}})
	return NewContractService(newStore(db), renderer, local, 1), local
}

func TestContractServiceGeneratePDF(t *testing.T) {
	db := setupTestDB(t)
	svc, local := newService(t, db)
	offer, phones := seedInventory(t, db, "0770123456")
	ctx := context.Background()

	c := newContract(offer, phones[0])
	c.Number = "DJ-20240101-1234"
	if err := svc.store.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.store.Sign(ctx, c.Number, signaturePNG(t)); err != nil {
		t.Fatal(err)
	}

	obj, err := svc.GeneratePDF(ctx, c.Number)
	if err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if obj.Key != "contracts/DJ-20240101-1234/contract_DJ-20240101-1234.pdf" {
		t.Errorf("Key = %q", obj.Key)
	}
	stored, err := assets.ReadAll(ctx, local, obj.Key)
	if err != nil || !bytes.HasPrefix(stored, []byte("%PDF-")) {
		t.Fatalf("stored document: %v", err)
	}
	reloaded, _ := svc.store.GetByNumber(ctx, c.Number)
	if reloaded.PDFKey != obj.Key {
		t.Errorf("PDFKey = %q, want %q", reloaded.PDFKey, obj.Key)
	}

	if _, err := svc.GeneratePDF(ctx, "DJ-unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestContractServiceGenerateAll(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newService(t, db)
	offer, phones := seedInventory(t, db, "0770000001", "0770000002", "0770000003")
	ctx := context.Background()

	for i, p := range phones {
		c := newContract(offer, p)
		if err := svc.store.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		if i < 2 {
			if _, err := svc.store.Sign(ctx, c.Number, signaturePNG(t)); err != nil {
				t.Fatal(err)
			}
		}
	}

	done, err := svc.GenerateAll(ctx)
	if err != nil || done != 2 {
		t.Fatalf("GenerateAll() = %d, %v; want 2", done, err)
	}
	done, err = svc.GenerateAll(ctx)
	if err != nil || done != 0 {
		t.Fatalf("second GenerateAll() = %d, %v; want 0", done, err)
	}
}

func TestBuildContractData(t *testing.T) {
	db := setupTestDB(t)
	svc, local := newService(t, db)
	ctx := context.Background()

	photoKey := assets.ContractPhotoKey("DJ-1", ".png")
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)))
	if _, err := local.Put(ctx, photoKey, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/png"); err != nil {
		t.Fatal(err)
	}

	c := &models.Contract{
		Number: "DJ-1", FirstName: "Amine", LastNameAr: "بن علي", PhotoKey: photoKey,
		Offer:       &models.Offer{Name: "LEGEND 50", Price: 50, DataAllowanceMB: 1024, Features: []string{"20 SMS"}},
		PhoneNumber: &models.PhoneNumber{Number: "0770123456", Status: models.PhoneNumberAssigned},
	}
	d := svc.BuildContractData(ctx, c)
	if d.Offer == nil || d.Offer.DataMB != 1024 || len(d.Offer.Features) != 1 {
		t.Errorf("offer not mapped: %+v", d.Offer)
	}
	if d.Phone == nil || d.Phone.Number != "0770123456" {
		t.Errorf("phone not mapped: %+v", d.Phone)
	}
	if d.Client.LastNameAr != "بن علي" || len(d.Photo) == 0 {
		t.Errorf("client or photo not mapped: %+v", d.Client)
	}

	c.PhotoKey = "contracts/DJ-1/missing.png"
	if d := svc.BuildContractData(ctx, c); d.Photo != nil {
		t.Error("missing photo should leave Photo empty")
	}
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestContractStoreListAndAttach(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770000001", "0770000002")
	ctx := context.Background()

	agent := models.User{Username: "agent1", Email: "agent1@djezzy.dz", Role: models.RoleAgent}
	if err := db.Create(&agent).Error; err != nil {
		t.Fatal(err)
	}
	var numbers []string
	for _, p := range phones {
		c := newContract(offer, p)
		c.CreatedByID = &agent.ID
		if err := store.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		numbers = append(numbers, c.Number)
	}
	if _, err := store.Sign(ctx, numbers[1], testSignature); err != nil {
		t.Fatal(err)
	}

	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List() = %d, %v", len(all), err)
	}
	signed, _ := store.List(ctx, models.ContractStatusSigned)
	if len(signed) != 1 || signed[0].Number != numbers[1] || signed[0].Offer == nil {
		t.Fatalf("List(signed) = %+v", signed)
	}
	if signed[0].CreatedByID == nil || *signed[0].CreatedByID != agent.ID {
		t.Errorf("CreatedByID = %v, want %d", signed[0].CreatedByID, agent.ID)
	}

	key := assets.ContractPhotoKey(numbers[0], ".jpg")
	got, err := store.AttachPhoto(ctx, numbers[0], key)
	if err != nil || got.PhotoKey != key {
		t.Fatalf("AttachPhoto: %v %+v", err, got)
	}
}

func TestContractStoreSignRequiresSignature(t *testing.T) {
	db := setupTestDB(t)
	store := newStore(db)
	offer, phones := seedInventory(t, db, "0770123456")
	ctx := context.Background()

	c := newContract(offer, phones[0])
	if err := store.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	for _, sig := range []string{"", "   "} {
		_, err := store.Sign(ctx, c.Number, sig)
		var v validation.Violations
		if !errors.As(err, &v) || v["signature"] != "required" {
			t.Fatalf("Sign(%q) err = %v, want signature required", sig, err)
		}
	}
	reloaded, _ := store.GetByNumber(ctx, c.Number)
	if reloaded.Status != models.ContractStatusDraft || reloaded.SignedAt != nil {
		t.Fatalf("unsigned contract changed state: %+v", reloaded)
	}
}

func TestContractServiceAttachPhoto(t *testing.T) {
	db := setupTestDB(t)
	svc, local := newService(t, db)
	offer, phones := seedInventory(t, db, "0770000001", "0770000002")
	ctx := context.Background()

	draft := newContract(offer, phones[0])
	signed := newContract(offer, phones[1])
	for _, c := range []*models.Contract{draft, signed} {
		if err := svc.store.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.store.Sign(ctx, signed.Number, testSignature); err != nil {
		t.Fatal(err)
	}

	photo := []byte("jpeg bytes")
	obj, err := svc.AttachPhoto(ctx, draft.Number, bytes.NewReader(photo), int64(len(photo)), "JPG", "image/jpeg")
	if err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	if want := assets.ContractPhotoKey(draft.Number, ".jpg"); obj.Key != want {
		t.Errorf("Key = %q, want %q", obj.Key, want)
	}
	stored, err := assets.ReadAll(ctx, local, obj.Key)
	if err != nil || !bytes.Equal(stored, photo) {
		t.Fatalf("stored photo = %q, %v", stored, err)
	}
	reloaded, _ := svc.store.GetByNumber(ctx, draft.Number)
	if reloaded.PhotoKey != obj.Key {
		t.Errorf("PhotoKey = %q, want %q", reloaded.PhotoKey, obj.Key)
	}

	_, err = svc.AttachPhoto(ctx, signed.Number, bytes.NewReader(photo), int64(len(photo)), ".jpg", "image/jpeg")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("photo on signed contract err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.store.AttachPhoto(ctx, signed.Number, "contracts/x/photo.jpg"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("store AttachPhoto on signed err = %v, want ErrInvalidTransition", err)
	}
}

func TestContractServiceLockStripes(t *testing.T) {
	svc := NewContractService(nil, nil, nil, 1)

	unlock := svc.lock("DJ-20240101-1234")
	held := 0
	for i := range svc.locks {
		if svc.locks[i].TryLock() {
			svc.locks[i].Unlock()
			continue
		}
		held++
	}
	if held != 1 {
		t.Fatalf("held stripes = %d, want 1", held)
	}
	done := make(chan struct{})
	go func() {
		release := svc.lock("DJ-20240101-1234")
		release()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("second lock on the same number did not wait")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done

	for i := 0; i < 1000; i++ {
		svc.lock(fmt.Sprintf("DJ-20240101-%04d", i))()
	}
}
