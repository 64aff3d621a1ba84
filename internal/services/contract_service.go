package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"sync"

	"github.com/diewo77/go-contracts/internal/assets"
	"github.com/diewo77/go-contracts/internal/logging"
	"github.com/diewo77/go-contracts/internal/models"
	"github.com/diewo77/go-contracts/internal/pdf"
	"golang.org/x/sync/errgroup"
)

// ContractService generates and stores contract documents.
type ContractService struct {
	store    *ContractStore
	renderer *pdf.Renderer
	assets   assets.Store
	workers  int

	// Writes for one contract number always take the same stripe.
	locks [lockStripes]sync.Mutex
}

const lockStripes = 64

func NewContractService(store *ContractStore, renderer *pdf.Renderer, assetStore assets.Store, workers int) *ContractService {
	if workers <= 0 {
		workers = 1
	}
	return &ContractService{store: store, renderer: renderer, assets: assetStore, workers: workers}
}

func (s *ContractService) lock(number string) func() {
	h := fnv.New32a()
	h.Write([]byte(number))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Render renders the document for a contract without storing it.
func (s *ContractService) Render(ctx context.Context, number string) ([]byte, error) {
	c, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(s.BuildContractData(ctx, c))
}

// GeneratePDF renders the contract, stores the document and records its key
// on the contract.
func (s *ContractService) GeneratePDF(ctx context.Context, number string) (assets.Object, error) {
	unlock := s.lock(number)
	defer unlock()

	c, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return assets.Object{}, err
	}
	obj, err := s.renderer.Persist(ctx, s.assets, s.BuildContractData(ctx, c))
	if err != nil {
		return assets.Object{}, err
	}
	if _, err := s.store.AttachPDF(ctx, number, obj.Key); err != nil {
		return obj, fmt.Errorf("record document for %s: %w", number, err)
	}
	if c.CreatedBy != nil {
		logging.Logger().Info("contract document recorded", "contract", number, "agent", c.CreatedBy.DisplayName())
	}
	return obj, nil
}

// AttachPhoto stores the customer photo of a draft contract under
// contracts/<number>/photo<ext> and records its key.
func (s *ContractService) AttachPhoto(ctx context.Context, number string, r io.Reader, size int64, ext, contentType string) (assets.Object, error) {
	unlock := s.lock(number)
	defer unlock()

	c, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return assets.Object{}, err
	}
	if !c.CanEdit() {
		return assets.Object{}, fmt.Errorf("contract %s: %w: photo on %s contract", number, ErrInvalidTransition, c.Status)
	}
	obj, err := s.assets.Put(ctx, assets.ContractPhotoKey(number, ext), r, size, contentType)
	if err != nil {
		return assets.Object{}, fmt.Errorf("store photo for %s: %w", number, err)
	}
	if _, err := s.store.AttachPhoto(ctx, number, obj.Key); err != nil {
		return obj, err
	}
	return obj, nil
}

// GenerateAll generates documents for every signed or validated contract
// that has none yet. It returns how many were stored; the first failure
// cancels the remaining work.
func (s *ContractService) GenerateAll(ctx context.Context) (int, error) {
	pending, err := s.store.ListMissingPDF(ctx)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	var mu sync.Mutex
	done := 0
	for _, c := range pending {
		number := c.Number
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.GeneratePDF(gctx, number); err != nil {
				return err
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	logging.Logger().Info("contract documents generated", "pending", len(pending), "stored", done, "err", err)
	return done, err
}

// BuildContractData maps a stored contract to the renderer input. The
// customer photo is read from the asset store; a missing photo is left empty.
func (s *ContractService) BuildContractData(ctx context.Context, c *models.Contract) pdf.ContractData {
	d := pdf.ContractData{
		Number:          c.Number,
		CreatedAt:       c.CreatedAt,
		Status:          string(c.Status),
		SignatureBase64: c.SignatureBase64,
		Client: pdf.ClientData{
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			FirstNameAr:  c.FirstNameAr,
			LastNameAr:   c.LastNameAr,
			BirthDate:    c.BirthDate,
			BirthPlace:   c.BirthPlace,
			BirthPlaceAr: c.BirthPlaceAr,
			Sex:          c.Sex,
			BloodType:    c.BloodType,
			NIN:          c.NIN,
			IDNumber:     c.IDNumber,
			IDExpiry:     c.IDExpiry,
			Daira:        c.Daira,
			Baladia:      c.Baladia,
			Phone:        c.Phone,
			Email:        c.Email,
			Address:      c.Address,
		},
	}
	if o := c.Offer; o != nil {
		d.Offer = &pdf.OfferData{
			Name:         o.Name,
			Price:        o.Price,
			Currency:     o.Currency,
			DataMB:       o.DataAllowanceMB,
			VoiceMinutes: o.VoiceMinutes,
			SMSCount:     o.SMSCount,
			ValidityDays: o.ValidityDays,
			Features:     o.FeatureList(),
		}
	}
	if p := c.PhoneNumber; p != nil {
		d.Phone = &pdf.PhoneData{Number: p.Number, Status: string(p.Status)}
	}
	if c.PhotoKey != "" && s.assets != nil {
		photo, err := assets.ReadAll(ctx, s.assets, c.PhotoKey)
		switch {
		case err == nil:
			d.Photo = photo
		case errors.Is(err, assets.ErrNotFound):
			logging.Logger().Warn("customer photo missing", "contract", c.Number, "key", c.PhotoKey)
		default:
			logging.Logger().Warn("customer photo unreadable", "contract", c.Number, "key", c.PhotoKey, "err", err)
		}
	}
	return d
}
