package brand

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/config"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

// Service holds the live brand profile and the formatted catalog text.
// Both are read on every dispatched message and replaced wholesale on
// reload, so a plain RWMutex over value copies is enough.
type Service struct {
	mu         sync.RWMutex
	profile    model.BrandProfile
	catalog    string
	configPath string
	logger     *zap.Logger
}

func NewService(profile model.BrandProfile, catalog, configPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profile:    profile,
		catalog:    catalog,
		configPath: configPath,
		logger:     logger,
	}
}

func (s *Service) Profile() model.BrandProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Service) FormattedCatalog(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, nil
}

// SetStatus flips the owner presence without a full reload.
func (s *Service) SetStatus(status model.OwnerStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Status = status
}

// Reload re-reads the config file and swaps in its brand and catalog
// sections. Everything else in the file is ignored here.
func (s *Service) Reload() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.profile = cfg.Brand
	s.catalog = cfg.Catalog
	s.mu.Unlock()

	s.logger.Info("brand profile reloaded",
		zap.String("owner", cfg.Brand.OwnerName),
		zap.String("status", string(cfg.Brand.Status)))
	return nil
}
