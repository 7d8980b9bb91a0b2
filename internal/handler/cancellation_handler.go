package handler

import (
	"net/http"

	"gescom-backend/internal/middleware"
	"gescom-backend/internal/repository"
	"gescom-backend/internal/service"
	"gescom-backend/pkg/pagination"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CancellationHandler struct {
	cancellationService service.CancellationService
}

func NewCancellationHandler(cancellationService service.CancellationService) *CancellationHandler {
	return &CancellationHandler{cancellationService: cancellationService}
}

func (h *CancellationHandler) RegisterRoutes(router *gin.RouterGroup) {
	cancellations := router.Group("/api/annulations")
	{
		cancellations.GET("", middleware.RequirePermission(middleware.PermDocumentsRead), h.List)
		cancellations.GET("/:id", middleware.RequirePermission(middleware.PermDocumentsRead), h.Get)
		cancellations.POST("/:id/refund", middleware.RequirePermission(middleware.PermAnnulationsWrite), h.Refund)
	}
}

// @Summary      List cancellations
// @Tags         annulations
// @Security     BearerAuth
// @Produce      json
// @Param        type   query     string  false  "Filter by document type"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.CancellationResponse}
// @Router       /api/annulations [get]
func (h *CancellationHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.CancellationListFilter{
		Type:  c.Query("type"),
		Page:  params.Page,
		Limit: params.Limit,
	}

	cancellations, total, err := h.cancellationService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, cancellations, params.Page, params.Limit, total))
}

// @Summary      Get cancellation
// @Tags         annulations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cancellation ID"
// @Success      200  {object}  response.Response{data=service.CancellationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/annulations/{id} [get]
func (h *CancellationHandler) Get(c *gin.Context) {
	cancellation, err := h.cancellationService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}

// @Summary      Refund credit note
// @Description  Pays out part or all of the remaining credit note balance
// @Tags         annulations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Cancellation ID"
// @Param        payload  body      service.RefundRequest  true  "Refund Payload"
// @Success      200      {object}  response.Response{data=service.CancellationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/annulations/{id}/refund [post]
func (h *CancellationHandler) Refund(c *gin.Context) {
	var req service.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cancellation, err := h.cancellationService.Refund(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cancellation))
}
