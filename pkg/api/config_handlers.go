package api

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/movingheads/pkg/log"
	"github.com/open-teleop/movingheads/services"
)

// ConfigHandler holds dependencies for configuration API endpoints.
type ConfigHandler struct {
	configService services.ShowConfigService
	logger        customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(configService services.ShowConfigService, logger customlog.Logger) *ConfigHandler {
	if configService == nil {
		panic("ConfigService cannot be nil in NewConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// RegisterConfigRoutes registers the read-only configuration endpoints.
func RegisterConfigRoutes(router fiber.Router, configService services.ShowConfigService, logger customlog.Logger) {
	h := NewConfigHandler(configService, logger)

	apiGroup := router.Group("/api/v1/config")
	apiGroup.Get("/show", h.handleGetShowConfig)

	logger.Infof("Registered show configuration API endpoints under /api/v1/config")
}

// handleGetShowConfig returns the show config YAML the rig was built from.
func (h *ConfigHandler) handleGetShowConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/show")
	yamlData, err := h.configService.GetCurrentConfigYAML()
	if err != nil {
		h.logger.Errorf("Failed to get current show config YAML: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve configuration: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}
