package handler

import (
	"net/http"

	"gescom-backend/internal/middleware"
	"gescom-backend/internal/model"
	"gescom-backend/internal/service"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	configService service.ConfigService
}

func NewConfigHandler(configService service.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

func (h *ConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	config := router.Group("/api/configuration")
	{
		config.GET("/numerotation", middleware.RequirePermission(middleware.PermDocumentsRead), h.GetNumbering)
		config.PUT("/numerotation", middleware.RequirePermission(middleware.PermConfigWrite), h.UpdateNumbering)
		config.GET("/taxes", middleware.RequirePermission(middleware.PermDocumentsRead), h.GetTaxes)
		config.PUT("/taxes", middleware.RequirePermission(middleware.PermConfigWrite), h.UpdateTaxes)
	}
}

// @Summary      Get numbering configuration
// @Tags         configuration
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.NumberingConfig}
// @Router       /api/configuration/numerotation [get]
func (h *ConfigHandler) GetNumbering(c *gin.Context) {
	cfg, err := h.configService.GetNumbering(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}

// @Summary      Update numbering configuration
// @Description  Changes prefixes and seed sequences for future numbers only
// @Tags         configuration
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.NumberingConfig  true  "Numbering Configuration"
// @Success      200      {object}  response.Response{data=model.NumberingConfig}
// @Router       /api/configuration/numerotation [put]
func (h *ConfigHandler) UpdateNumbering(c *gin.Context) {
	var cfg model.NumberingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.configService.UpdateNumbering(c.Request.Context(), cfg); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}

// @Summary      Get tax configuration
// @Tags         configuration
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.TaxConfig}
// @Router       /api/configuration/taxes [get]
func (h *ConfigHandler) GetTaxes(c *gin.Context) {
	cfg, err := h.configService.GetTaxes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}

// @Summary      Update tax configuration
// @Description  Changes rates for totals computed after the update
// @Tags         configuration
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      model.TaxConfig  true  "Tax Configuration"
// @Success      200      {object}  response.Response{data=model.TaxConfig}
// @Router       /api/configuration/taxes [put]
func (h *ConfigHandler) UpdateTaxes(c *gin.Context) {
	var cfg model.TaxConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.configService.UpdateTaxes(c.Request.Context(), cfg); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}
