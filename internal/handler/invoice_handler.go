package handler

import (
	"net/http"

	"gescom-backend/internal/middleware"
	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/internal/service"
	"gescom-backend/pkg/pagination"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService      service.InvoiceService
	cancellationService service.CancellationService
	paymentService      service.PaymentService
}

func NewInvoiceHandler(
	invoiceService service.InvoiceService,
	cancellationService service.CancellationService,
	paymentService service.PaymentService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:      invoiceService,
		cancellationService: cancellationService,
		paymentService:      paymentService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/factures")
	{
		invoices.POST("", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Create)
		invoices.GET("", middleware.RequirePermission(middleware.PermDocumentsRead), h.List)
		invoices.GET("/:id", middleware.RequirePermission(middleware.PermDocumentsRead), h.Get)
		invoices.PUT("/:id", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Update)
		invoices.POST("/:id/validate", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Validate)
		invoices.POST("/:id/send", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Send)
		invoices.POST("/:id/duplicate", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Duplicate)
		invoices.POST("/:id/cancel", middleware.RequirePermission(middleware.PermAnnulationsWrite), h.Cancel)
		invoices.GET("/:id/paiements", middleware.RequirePermission(middleware.PermDocumentsRead), h.ListPayments)
	}
}

// @Summary      Create invoice
// @Tags         factures
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/factures [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// @Summary      List invoices
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        statut     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        numero     query     string  false  "Partial numero match"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=[]service.InvoiceResponse}
// @Router       /api/factures [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.InvoiceListFilter{
		Statut: c.Query("statut"),
		Numero: c.Query("numero"),
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

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, invoices, params.Page, params.Limit, total))
}

// @Summary      Get invoice
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/factures/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// @Summary      Update invoice
// @Tags         factures
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/factures/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// @Summary      Validate invoice
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/factures/{id}/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
	invoice, err := h.invoiceService.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// @Summary      Send invoice
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/factures/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	invoice, err := h.invoiceService.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// @Summary      Duplicate invoice
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      201  {object}  response.Response{data=service.InvoiceResponse}
// @Router       /api/factures/{id}/duplicate [post]
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	invoice, err := h.invoiceService.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// @Summary      Cancel invoice
// @Tags         factures
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Invoice ID"
// @Param        payload  body      service.CancelDocumentRequest  true  "Cancellation Payload"
// @Success      200      {object}  response.Response{data=service.CancellationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/factures/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	var req service.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cancellation, err := h.cancellationService.CancelInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}

// @Summary      List invoice payments
// @Tags         factures
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Router       /api/factures/{id}/paiements [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListForDocument(c.Request.Context(), model.DocTypeFacture, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}
