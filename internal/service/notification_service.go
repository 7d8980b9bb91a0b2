package service

import (
	"encoding/json"
	"time"

	"gescom-backend/internal/websocket"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification events pushed to connected back-office users
const (
	EventDocumentCreated   = "document_created"
	EventPaymentReceived   = "payment_received"
	EventDocumentCancelled = "document_cancelled"
)

type notificationEvent struct {
	Event     string `json:"event"`
	DocType   string `json:"doc_type,omitempty"`
	Numero    string `json:"numero"`
	Montant   string `json:"montant,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NotificationService broadcasts document events over the WebSocket hub.
// Strictly fire-and-forget: a full hub or marshalling failure is logged and
// never surfaces to the caller.
type NotificationService interface {
	DocumentCreated(docType, numero string)
	PaymentReceived(numero string, montant decimal.Decimal)
	DocumentCancelled(docType, numero string)
}

type notificationService struct {
	hub    *websocket.Hub
	logger zerolog.Logger
}

func NewNotificationService(hub *websocket.Hub, logger zerolog.Logger) NotificationService {
	return &notificationService{hub: hub, logger: logger}
}

func (s *notificationService) DocumentCreated(docType, numero string) {
	s.push(notificationEvent{Event: EventDocumentCreated, DocType: docType, Numero: numero})
}

func (s *notificationService) PaymentReceived(numero string, montant decimal.Decimal) {
	s.push(notificationEvent{Event: EventPaymentReceived, Numero: numero, Montant: montant.StringFixed(2)})
}

func (s *notificationService) DocumentCancelled(docType, numero string) {
	s.push(notificationEvent{Event: EventDocumentCancelled, DocType: docType, Numero: numero})
}

func (s *notificationService) push(event notificationEvent) {
	event.Timestamp = time.Now().Format(time.RFC3339)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", event.Event).Msg("notification not serializable")
		return
	}

	select {
	case s.hub.Broadcast <- payload:
	default:
		// Hub not running or saturated; notifications are best effort.
		s.logger.Warn().Str("event", event.Event).Msg("notification dropped")
	}
}
