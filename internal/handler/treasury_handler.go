package handler

import (
	"net/http"

	"gescom-backend/internal/middleware"
	"gescom-backend/internal/repository"
	"gescom-backend/internal/service"
	"gescom-backend/pkg/pagination"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TreasuryHandler exposes the bank accounts and the cash/bank movement ledger.
type TreasuryHandler struct {
	ledgerService service.LedgerService
}

func NewTreasuryHandler(ledgerService service.LedgerService) *TreasuryHandler {
	return &TreasuryHandler{ledgerService: ledgerService}
}

func (h *TreasuryHandler) RegisterRoutes(router *gin.RouterGroup) {
	banks := router.Group("/api/banques")
	{
		banks.POST("", middleware.RequirePermission(middleware.PermTresorerieWrite), h.CreateBank)
		banks.GET("", middleware.RequirePermission(middleware.PermTresorerieRead), h.ListBanks)
		banks.GET("/:id", middleware.RequirePermission(middleware.PermTresorerieRead), h.GetBank)
	}
	router.GET("/api/mouvements", middleware.RequirePermission(middleware.PermTresorerieRead), h.ListMovements)
}

// @Summary      Create bank account
// @Tags         tresorerie
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBankRequest  true  "Create Bank Payload"
// @Success      201      {object}  response.Response{data=model.Bank}
// @Failure      400      {object}  response.Response
// @Router       /api/banques [post]
func (h *TreasuryHandler) CreateBank(c *gin.Context) {
	var req service.CreateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bank, err := h.ledgerService.CreateBank(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bank))
}

// @Summary      List bank accounts
// @Tags         tresorerie
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Bank}
// @Router       /api/banques [get]
func (h *TreasuryHandler) ListBanks(c *gin.Context) {
	banks, err := h.ledgerService.ListBanks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, banks))
}

// @Summary      Get bank account
// @Tags         tresorerie
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bank ID"
// @Success      200  {object}  response.Response{data=model.Bank}
// @Failure      404  {object}  response.Response
// @Router       /api/banques/{id} [get]
func (h *TreasuryHandler) GetBank(c *gin.Context) {
	bankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid bank id"))
		return
	}

	bank, err := h.ledgerService.GetBank(c.Request.Context(), bankID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, bank))
}

// @Summary      List cash movements
// @Tags         tresorerie
// @Security     BearerAuth
// @Produce      json
// @Param        source     query     string  false  "caisse or banque"
// @Param        banque_id  query     string  false  "Filter by bank"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=[]model.CashMovement}
// @Router       /api/mouvements [get]
func (h *TreasuryHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.CashMovementListFilter{
		Source: c.Query("source"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("banque_id"); raw != "" {
		banqueID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid banque_id"))
			return
		}
		filter.BanqueID = &banqueID
	}

	movements, total, err := h.ledgerService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, movements, params.Page, params.Limit, total))
}
