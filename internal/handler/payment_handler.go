package handler

import (
	"net/http"

	"gescom-backend/internal/middleware"
	"gescom-backend/internal/service"
	"gescom-backend/pkg/pagination"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/paiements")
	{
		payments.POST("", middleware.RequirePermission(middleware.PermPaiementsWrite), h.Create)
		payments.POST("/global", middleware.RequirePermission(middleware.PermPaiementsWrite), h.CreateGlobal)
		payments.GET("/:id", middleware.RequirePermission(middleware.PermDocumentsRead), h.Get)
		payments.DELETE("/:id", middleware.RequirePermission(middleware.PermPaiementsWrite), h.Cancel)
	}
	router.GET("/api/clients/:id/paiements", middleware.RequirePermission(middleware.PermDocumentsRead), h.ListForClient)
}

// @Summary      Record payment
// @Description  Settles part or all of an invoice or work order
// @Tags         paiements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequest  true  "Create Payment Payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/paiements [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// @Summary      Record global payment
// @Description  Allocates a lump sum over the given documents in order, or over the client's outstanding invoices oldest first when no documents are given
// @Tags         paiements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateGlobalPaymentRequest  true  "Global Payment Payload"
// @Success      201      {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/paiements/global [post]
func (h *PaymentHandler) CreateGlobal(c *gin.Context) {
	var req service.CreateGlobalPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payments, err := h.paymentService.CreateGlobal(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payments))
}

// @Summary      Get payment
// @Tags         paiements
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/paiements/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// @Summary      Cancel payment
// @Description  Reverses the payment's document and ledger effects and deletes it
// @Tags         paiements
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/paiements/{id} [delete]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	if err := h.paymentService.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cancelled": true}))
}

// @Summary      List client payments
// @Tags         paiements
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Client ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.PaymentResponse}
// @Router       /api/clients/{id}/paiements [get]
func (h *PaymentHandler) ListForClient(c *gin.Context) {
	params := pagination.Parse(c)
	payments, total, err := h.paymentService.ListForClient(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, payments, params.Page, params.Limit, total))
}
