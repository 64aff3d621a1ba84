package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/go-contracts/internal/assets"
	"github.com/diewo77/go-contracts/internal/config"
	"github.com/diewo77/go-contracts/internal/db"
	"github.com/diewo77/go-contracts/internal/i18n"
	"github.com/diewo77/go-contracts/internal/pdf"
	"github.com/diewo77/go-contracts/internal/services"
	"gorm.io/gorm"
)

// App wires the stores and the renderer behind the command line actions.
type App struct {
	contracts *services.ContractStore
	phones    *services.PhoneNumbers
	service   *services.ContractService
	store     assets.Store
}

// presigner is implemented by stores that can hand out download links.
type presigner interface {
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

const downloadLinkTTL = 24 * time.Hour

// NewApp builds the asset store and renderer described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *gorm.DB) (*App, error) {
	store, err := newAssetStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	contracts := services.NewContractStore(dbConn)
	return &App{
		contracts: contracts,
		phones:    services.NewPhoneNumbers(dbConn),
		service:   services.NewContractService(contracts, pdf.NewRenderer(rendererOptions(cfg)), store, cfg.Render.Workers),
		store:     store,
	}, nil
}

func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.Database.Driver == "postgres" || cfg.Database.Driver == "" {
		return db.RunSQLMigrations(cfg.Database.URL())
	}
	return db.Migrate(dbConn)
}

func newAssetStore(ctx context.Context, cfg config.StorageConfig) (assets.Store, error) {
	switch cfg.Driver {
	case "minio":
		s, err := assets.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		slog.Info("using object storage", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket)
		return s, nil
	case "local", "":
		slog.Info("using local storage", "root", cfg.Root)
		return assets.NewLocalStore(cfg.Root), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func rendererOptions(cfg *config.Config) pdf.Options {
	opts := pdf.DefaultOptions()
	opts.Lang = i18n.DetectLanguage(cfg.Render.Lang)
	opts.Compress = cfg.Render.Compress
	opts.Verify = cfg.Render.Verify
	opts.Resolver = assets.NewResolver(cfg.Assets.BaseDir, cfg.Assets.StaticDirs...)
	opts.LogoName = cfg.Assets.LogoName
	opts.FontName = cfg.Assets.FontName
	return opts
}

// Generate renders one contract and stores its document.
func (a *App) Generate(ctx context.Context, number string) error {
	obj, err := a.service.GeneratePDF(ctx, number)
	if err != nil {
		return err
	}
	slog.Info("contract document generated", "contract", number, "key", obj.Key, "location", obj.Location)
	if p, ok := a.store.(presigner); ok {
		url, err := p.PresignedURL(ctx, obj.Key, downloadLinkTTL)
		if err != nil {
			slog.Warn("download link unavailable", "contract", number, "err", err)
			return nil
		}
		slog.Info("contract download link", "contract", number, "url", url, "expires_in", downloadLinkTTL)
	}
	return nil
}

// AttachPhoto uploads the customer photo at path to a draft contract.
func (a *App) AttachPhoto(ctx context.Context, number, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat photo: %w", err)
	}
	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := a.service.AttachPhoto(ctx, number, f, info.Size(), ext, contentType)
	if err != nil {
		return err
	}
	slog.Info("customer photo attached", "contract", number, "key", obj.Key, "size", obj.Size)
	return nil
}

// RenderToFile renders one contract to path without touching the store.
func (a *App) RenderToFile(ctx context.Context, number, path string) error {
	doc, err := a.service.Render(ctx, number)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("contract document written", "contract", number, "path", path, "bytes", len(doc))
	return nil
}

// GenerateAll stores documents for every signed contract missing one.
func (a *App) GenerateAll(ctx context.Context) error {
	n, err := a.service.GenerateAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("batch generation completed", "stored", n)
	return nil
}

// Summary logs contract and inventory counts.
func (a *App) Summary(ctx context.Context) error {
	st, err := a.contracts.Stats(ctx)
	if err != nil {
		return err
	}
	counts, err := a.phones.Counts(ctx)
	if err != nil {
		return err
	}
	slog.Info("contracts", "total", st.Total, "by_status", st.ByStatus, "by_offer", st.ByOffer)
	slog.Info("phone numbers", "counts", counts)
	return nil
}
