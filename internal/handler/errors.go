package handler

import (
	"errors"
	"net/http"

	"gescom-backend/internal/service"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// fail maps service errors onto HTTP statuses and writes the error envelope.
func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrBankNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotDraft),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrAlreadyConverted),
		errors.Is(err, service.ErrAlreadyInvoiced),
		errors.Is(err, service.ErrDocumentCancelled),
		errors.Is(err, service.ErrNoCreditNote),
		errors.Is(err, service.ErrRefundExceedsCredit):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNumberSpaceExhausted):
		status = http.StatusInternalServerError
	}
	c.JSON(status, response.Error(status, err.Error()))
}
