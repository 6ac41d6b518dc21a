package services

import (
	"fmt"
	"sync"

	"github.com/open-teleop/movingheads/pkg/config"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// ShowConfigService exposes the loaded show configuration. The rig is fixed
// for the life of the process, so the service is read-only.
type ShowConfigService interface {
	LoadConfig() error
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	Path() string
}

// showConfigService implements the ShowConfigService interface.
type showConfigService struct {
	showConfigPath string
	logger         customlog.Logger
	currentConfig  *config.Config
	currentYAML    []byte
	mu             sync.RWMutex
}

// NewShowConfigService loads and validates the show config at path. Any
// problem is returned; the controller must not start without a valid rig.
func NewShowConfigService(showConfigPath string, logger customlog.Logger) (ShowConfigService, error) {
	if showConfigPath == "" {
		return nil, fmt.Errorf("show configuration path cannot be empty")
	}
	if logger == nil {
		logger = customlog.NewDiscardLogger()
	}

	service := &showConfigService{
		showConfigPath: showConfigPath,
		logger:         logger,
	}
	if err := service.LoadConfig(); err != nil {
		return nil, err
	}

	logger.Infof("ShowConfigService initialized successfully for path: %s", showConfigPath)
	return service, nil
}

// LoadConfig reads and validates the show config file. On failure the
// previously loaded config is kept.
func (s *showConfigService) LoadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading show configuration from: %s", s.showConfigPath)
	cfg, data, err := config.LoadConfig(s.showConfigPath)
	if err != nil {
		s.logger.Errorf("Error loading show config file '%s': %v", s.showConfigPath, err)
		return err
	}

	s.currentConfig = cfg
	s.currentYAML = data
	s.logger.Infof("Successfully loaded show configuration: %d moving heads, speed %.3f", len(cfg.MovingHeads), cfg.Speed)
	return nil
}

// GetCurrentConfig returns the loaded show config. Callers must not modify it.
func (s *showConfigService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML returns the raw YAML the current config was loaded from.
func (s *showConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentYAML == nil {
		return nil, fmt.Errorf("show configuration '%s' not loaded", s.showConfigPath)
	}
	out := make([]byte, len(s.currentYAML))
	copy(out, s.currentYAML)
	return out, nil
}

// Path returns the show config file location.
func (s *showConfigService) Path() string {
	return s.showConfigPath
}
