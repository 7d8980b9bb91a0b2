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

type WorkOrderHandler struct {
	orderService        service.WorkOrderService
	cancellationService service.CancellationService
	paymentService      service.PaymentService
}

func NewWorkOrderHandler(
	orderService service.WorkOrderService,
	cancellationService service.CancellationService,
	paymentService service.PaymentService,
) *WorkOrderHandler {
	return &WorkOrderHandler{
		orderService:        orderService,
		cancellationService: cancellationService,
		paymentService:      paymentService,
	}
}

func (h *WorkOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/ordres")
	{
		orders.POST("", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Create)
		orders.GET("", middleware.RequirePermission(middleware.PermDocumentsRead), h.List)
		orders.GET("/:id", middleware.RequirePermission(middleware.PermDocumentsRead), h.Get)
		orders.PUT("/:id", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Update)
		orders.POST("/:id/duplicate", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Duplicate)
		orders.POST("/:id/convert", middleware.RequirePermission(middleware.PermDocumentsWrite), h.Convert)
		orders.POST("/:id/cancel", middleware.RequirePermission(middleware.PermAnnulationsWrite), h.Cancel)
		orders.GET("/:id/paiements", middleware.RequirePermission(middleware.PermDocumentsRead), h.ListPayments)
	}
}

// @Summary      Create work order
// @Tags         ordres
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWorkOrderRequest  true  "Create Work Order Payload"
// @Success      201      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/ordres [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// @Summary      List work orders
// @Tags         ordres
// @Security     BearerAuth
// @Produce      json
// @Param        statut     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=[]service.WorkOrderResponse}
// @Router       /api/ordres [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.WorkOrderListFilter{
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

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, orders, params.Page, params.Limit, total))
}

// @Summary      Get work order
// @Tags         ordres
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work Order ID"
// @Success      200  {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/ordres/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// @Summary      Update work order
// @Tags         ordres
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Work Order ID"
// @Param        payload  body      service.UpdateWorkOrderRequest  true  "Update Work Order Payload"
// @Success      200      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/ordres/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req service.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// @Summary      Duplicate work order
// @Tags         ordres
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work Order ID"
// @Success      201  {object}  response.Response{data=service.WorkOrderResponse}
// @Router       /api/ordres/{id}/duplicate [post]
func (h *WorkOrderHandler) Duplicate(c *gin.Context) {
	order, err := h.orderService.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// @Summary      Convert work order to invoice
// @Tags         ordres
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work Order ID"
// @Success      201  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/ordres/{id}/convert [post]
func (h *WorkOrderHandler) Convert(c *gin.Context) {
	invoice, err := h.orderService.ConvertToInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// @Summary      Cancel work order
// @Tags         ordres
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Work Order ID"
// @Param        payload  body      service.CancelDocumentRequest  true  "Cancellation Payload"
// @Success      200      {object}  response.Response{data=service.CancellationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/ordres/{id}/cancel [post]
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	var req service.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cancellation, err := h.cancellationService.CancelWorkOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}

// @Summary      List work order payments
// @Tags         ordres
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Work Order ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Router       /api/ordres/{id}/paiements [get]
func (h *WorkOrderHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListForDocument(c.Request.Context(), model.DocTypeOrdre, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}
