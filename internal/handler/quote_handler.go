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

type QuoteHandler struct {
	quoteService        service.QuoteService
	cancellationService service.CancellationService
}

func NewQuoteHandler(quoteService service.QuoteService, cancellationService service.CancellationService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, cancellationService: cancellationService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/api/devis")
	{
		quotes.POST("", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Create)
		quotes.GET("", middleware.RequirePermission(middleware.PermDocumentsRead), h.List)
		quotes.GET("/:id", middleware.RequirePermission(middleware.PermDocumentsRead), h.Get)
		quotes.PUT("/:id", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Update)
		quotes.POST("/:id/send", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Send)
		quotes.POST("/:id/duplicate", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Duplicate)
		quotes.POST("/:id/convert", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Convert)
		quotes.POST("/:id/cancel", middleware.RequirePermission(middleware.PermAnnulationsWrite), h.Cancel)
	}
}

// @Summary      Create quote
// @Tags         devis
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuoteRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devis [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// @Summary      List quotes
// @Tags         devis
// @Security     BearerAuth
// @Produce      json
// @Param        statut     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=[]service.QuoteResponse}
// @Router       /api/devis [get]
func (h *QuoteHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.QuoteListFilter{
		Statut: c.Query("statut"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid client_id"))
			return
		}
		filter.ClientID = &clientID
	}

	quotes, total, err := h.quoteService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, quotes, params.Page, params.Limit, total))
}

// @Summary      Get quote
// @Tags         devis
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/devis/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.quoteService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// @Summary      Update quote
// @Tags         devis
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Quote ID"
// @Param        payload  body      service.UpdateQuoteRequest  true  "Update Quote Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/devis/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	var req service.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// @Summary      Send quote
// @Tags         devis
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/devis/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	quote, err := h.quoteService.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// @Summary      Duplicate quote
// @Tags         devis
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      201  {object}  response.Response{data=service.QuoteResponse}
// @Router       /api/devis/{id}/duplicate [post]
func (h *QuoteHandler) Duplicate(c *gin.Context) {
	quote, err := h.quoteService.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// @Summary      Convert quote to work order
// @Tags         devis
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      201  {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/devis/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	order, err := h.quoteService.ConvertToWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// @Summary      Cancel quote
// @Tags         devis
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Quote ID"
// @Param        payload  body      service.CancelDocumentRequest true  "Cancellation Payload"
// @Success      200      {object}  response.Response{data=service.CancellationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/devis/{id}/cancel [post]
func (h *QuoteHandler) Cancel(c *gin.Context) {
	var req service.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cancellation, err := h.cancellationService.CancelQuote(c.Request.Context(), c.Param("id"), req.Motif)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}
