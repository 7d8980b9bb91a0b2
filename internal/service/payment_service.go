package service

import (
	"context"
	"fmt"
	"time"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/authctx"
	"gescom-backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	DocumentType string  `json:"document_type" binding:"required"` // facture or ordre_travail
	DocumentID   string  `json:"document_id" binding:"required"`
	Montant      string  `json:"montant" binding:"required"`
	ModePaiement string  `json:"mode_paiement" binding:"required"`
	BanqueID     *string `json:"banque_id"`
	Reference    string  `json:"reference"`
	DatePaiement *string `json:"date_paiement"` // YYYY-MM-DD, defaults to today
}

// GlobalPaymentTarget names one document to settle. Montant, when set, caps
// what this document takes from the lump sum; it is clamped to the document's
// outstanding balance.
type GlobalPaymentTarget struct {
	DocumentType string  `json:"document_type" binding:"required"` // facture or ordre_travail
	DocumentID   string  `json:"document_id" binding:"required"`
	Montant      *string `json:"montant"`
}

// CreateGlobalPaymentRequest spreads a lump sum over several documents,
// settled in the order given. When no documents are supplied, the client's
// payable invoices are targeted oldest first instead.
type CreateGlobalPaymentRequest struct {
	Documents    []GlobalPaymentTarget `json:"documents" binding:"omitempty,dive"`
	ClientID     string                `json:"client_id"`
	Montant      string                `json:"montant" binding:"required"`
	ModePaiement string                `json:"mode_paiement" binding:"required"`
	BanqueID     *string               `json:"banque_id"`
	Reference    string                `json:"reference"`
}

type PaymentResponse struct {
	ID           string  `json:"id"`
	DocumentType string  `json:"document_type"`
	DocumentID   string  `json:"document_id"`
	ClientID     string  `json:"client_id"`
	ClientNom    string  `json:"client_nom,omitempty"`
	Montant      string  `json:"montant"`
	ModePaiement string  `json:"mode_paiement"`
	BanqueID     *string `json:"banque_id,omitempty"`
	BanqueNom    string  `json:"banque_nom,omitempty"`
	Reference    string  `json:"reference,omitempty"`
	DatePaiement string  `json:"date_paiement"`
	CreatedAt    string  `json:"created_at"`
}

// PaymentService settles invoices and work orders. Every payment moves the
// document's paid amount, appends a ledger entree and, when bank-routed,
// credits the bank, all in one transaction. Cancelling replays the same
// effects in reverse and hard-deletes the payment row; the ledger keeps both
// movements.
type PaymentService interface {
	Create(ctx context.Context, req CreatePaymentRequest) (PaymentResponse, error)
	// CreateGlobal allocates the amount greedily over the requested documents
	// in order, each taking min(requested, outstanding, remaining). Any amount
	// left after the last document is dropped, not recorded.
	CreateGlobal(ctx context.Context, req CreateGlobalPaymentRequest) ([]PaymentResponse, error)
	Get(ctx context.Context, id string) (PaymentResponse, error)
	ListForDocument(ctx context.Context, docType, docID string) ([]PaymentResponse, error)
	ListForClient(ctx context.Context, clientID string, page, limit int) ([]PaymentResponse, int64, error)
	Cancel(ctx context.Context, id string) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	invoices    InvoiceService
	orders      WorkOrderService
	ledger      LedgerService
	txManager   repository.TransactionManager
	audit       AuditService
	notifier    NotificationService

	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.WorkOrderRepository
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.WorkOrderRepository,
	invoices InvoiceService,
	orders WorkOrderService,
	ledger LedgerService,
	txManager repository.TransactionManager,
	audit AuditService,
	notifier NotificationService,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		invoices:    invoices,
		orders:      orders,
		ledger:      ledger,
		txManager:   txManager,
		audit:       audit,
		notifier:    notifier,
	}
}

func (s *paymentService) Create(ctx context.Context, req CreatePaymentRequest) (PaymentResponse, error) {
	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid document_id: %w", err)
	}
	montant, err := parsePositiveAmount(req.Montant)
	if err != nil {
		return PaymentResponse{}, err
	}
	if err := validatePaymentMode(req.ModePaiement); err != nil {
		return PaymentResponse{}, err
	}
	banqueID, err := parseOptionalUUID(req.BanqueID, "banque_id")
	if err != nil {
		return PaymentResponse{}, err
	}
	datePaiement, err := parseOptionalDate(req.DatePaiement)
	if err != nil {
		return PaymentResponse{}, err
	}
	if datePaiement == nil {
		now := time.Now()
		datePaiement = &now
	}

	var payment *model.Payment
	var docNumero string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var clientID uuid.UUID
		switch req.DocumentType {
		case model.DocTypeFacture:
			invoice, err := s.invoices.ApplyPayment(txCtx, docID, montant)
			if err != nil {
				return err
			}
			clientID = invoice.ClientID
			docNumero = invoice.Numero
		case model.DocTypeOrdre:
			order, err := s.orders.ApplyPayment(txCtx, docID, montant)
			if err != nil {
				return err
			}
			clientID = order.ClientID
			docNumero = order.Numero
		default:
			return fmt.Errorf("unsupported document_type %s", req.DocumentType)
		}

		payment = &model.Payment{
			DocumentType: req.DocumentType,
			DocumentID:   docID,
			ClientID:     clientID,
			Montant:      montant,
			ModePaiement: req.ModePaiement,
			BanqueID:     banqueID,
			Reference:    req.Reference,
			DatePaiement: *datePaiement,
		}
		if err := s.paymentRepo.Create(txCtx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		_, err := s.ledger.Record(txCtx, LedgerEntry{
			Type:       model.MouvementEntree,
			Montant:    montant,
			BanqueID:   banqueID,
			PaiementID: &payment.ID,
			Libelle:    fmt.Sprintf("Paiement %s", docNumero),
		})
		return err
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreatePaiement, payment.ID.String(), docNumero, req)
	s.notifier.PaymentReceived(docNumero, montant)

	return s.Get(ctx, payment.ID.String())
}

// globalTarget is a GlobalPaymentTarget with its fields parsed.
type globalTarget struct {
	docType   string
	docID     uuid.UUID
	requested *decimal.Decimal
}

func (s *paymentService) CreateGlobal(ctx context.Context, req CreateGlobalPaymentRequest) ([]PaymentResponse, error) {
	montant, err := parsePositiveAmount(req.Montant)
	if err != nil {
		return nil, err
	}
	if err := validatePaymentMode(req.ModePaiement); err != nil {
		return nil, err
	}
	banqueID, err := parseOptionalUUID(req.BanqueID, "banque_id")
	if err != nil {
		return nil, err
	}
	targets, err := parseGlobalTargets(req.Documents)
	if err != nil {
		return nil, err
	}

	var clientID uuid.UUID
	if len(targets) == 0 {
		if req.ClientID == "" {
			return nil, fmt.Errorf("either documents or client_id is required")
		}
		clientID, err = uuid.Parse(req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("invalid client_id: %w", err)
		}
	}

	var created []*model.Payment
	var numeros []string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if len(targets) == 0 {
			invoices, err := s.invoiceRepo.ListPayableForClient(txCtx, clientID)
			if err != nil {
				return fmt.Errorf("failed to list payable invoices: %w", err)
			}
			for i := range invoices {
				targets = append(targets, globalTarget{docType: model.DocTypeFacture, docID: invoices[i].ID})
			}
		}

		now := time.Now()
		remaining := montant
		for _, target := range targets {
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}

			outstanding, err := s.outstandingFor(txCtx, target)
			if err != nil {
				return err
			}
			take := outstanding
			if target.requested != nil && target.requested.LessThan(take) {
				take = *target.requested
			}
			if remaining.LessThan(take) {
				take = remaining
			}
			if take.LessThanOrEqual(decimal.Zero) {
				continue
			}

			var docClientID uuid.UUID
			var numero string
			switch target.docType {
			case model.DocTypeFacture:
				invoice, err := s.invoices.ApplyPayment(txCtx, target.docID, take)
				if err != nil {
					return err
				}
				docClientID = invoice.ClientID
				numero = invoice.Numero
			case model.DocTypeOrdre:
				order, err := s.orders.ApplyPayment(txCtx, target.docID, take)
				if err != nil {
					return err
				}
				docClientID = order.ClientID
				numero = order.Numero
			}

			payment := &model.Payment{
				DocumentType: target.docType,
				DocumentID:   target.docID,
				ClientID:     docClientID,
				Montant:      take,
				ModePaiement: req.ModePaiement,
				BanqueID:     banqueID,
				Reference:    req.Reference,
				DatePaiement: now,
			}
			if err := s.paymentRepo.Create(txCtx, payment); err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
			if _, err := s.ledger.Record(txCtx, LedgerEntry{
				Type:       model.MouvementEntree,
				Montant:    take,
				BanqueID:   banqueID,
				PaiementID: &payment.ID,
				Libelle:    fmt.Sprintf("Paiement global %s", numero),
			}); err != nil {
				return err
			}

			created = append(created, payment)
			numeros = append(numeros, numero)
			remaining = remaining.Sub(take)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]PaymentResponse, 0, len(created))
	for i, payment := range created {
		s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreatePaiement, payment.ID.String(), numeros[i], req)
		s.notifier.PaymentReceived(numeros[i], payment.Montant)
		response, err := s.Get(ctx, payment.ID.String())
		if err != nil {
			return nil, err
		}
		res = append(res, response)
	}
	return res, nil
}

func (s *paymentService) Get(ctx context.Context, id string) (PaymentResponse, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid payment id: %w", err)
	}
	payment, err := s.paymentRepo.FindByIDWithRelations(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) ListForDocument(ctx context.Context, docType, docID string) ([]PaymentResponse, error) {
	documentID, err := uuid.Parse(docID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	payments, err := s.paymentRepo.ListForDocument(ctx, docType, documentID)
	if err != nil {
		return nil, err
	}

	res := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		res = append(res, toPaymentResponse(&payments[i]))
	}
	return res, nil
}

func (s *paymentService) ListForClient(ctx context.Context, clientID string, page, limit int) ([]PaymentResponse, int64, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid client id: %w", err)
	}
	page, limit = pagination.Clamp(page, limit)

	payments, total, err := s.paymentRepo.ListForClient(ctx, id, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		res = append(res, toPaymentResponse(&payments[i]))
	}
	return res, total, nil
}

func (s *paymentService) Cancel(ctx context.Context, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid payment id: %w", err)
	}

	var docNumero string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindByID(txCtx, paymentID)
		if err != nil {
			return err
		}

		switch payment.DocumentType {
		case model.DocTypeFacture:
			invoice, err := s.invoices.WithdrawPayment(txCtx, payment.DocumentID, payment.Montant)
			if err != nil {
				return err
			}
			docNumero = invoice.Numero
		case model.DocTypeOrdre:
			order, err := s.orders.WithdrawPayment(txCtx, payment.DocumentID, payment.Montant)
			if err != nil {
				return err
			}
			docNumero = order.Numero
		default:
			return fmt.Errorf("unsupported document_type %s", payment.DocumentType)
		}

		if _, err := s.ledger.Record(txCtx, LedgerEntry{
			Type:       model.MouvementSortie,
			Montant:    payment.Montant,
			BanqueID:   payment.BanqueID,
			PaiementID: &payment.ID,
			Libelle:    fmt.Sprintf("Annulation paiement %s", docNumero),
		}); err != nil {
			return err
		}

		return s.paymentRepo.Delete(txCtx, payment.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCancelPaiement, paymentID.String(), docNumero, nil)
	return nil
}

func parseGlobalTargets(docs []GlobalPaymentTarget) ([]globalTarget, error) {
	targets := make([]globalTarget, 0, len(docs))
	for i := range docs {
		if docs[i].DocumentType != model.DocTypeFacture && docs[i].DocumentType != model.DocTypeOrdre {
			return nil, fmt.Errorf("unsupported document_type %s", docs[i].DocumentType)
		}
		docID, err := uuid.Parse(docs[i].DocumentID)
		if err != nil {
			return nil, fmt.Errorf("invalid document_id: %w", err)
		}
		target := globalTarget{docType: docs[i].DocumentType, docID: docID}
		if docs[i].Montant != nil {
			requested, err := parsePositiveAmount(*docs[i].Montant)
			if err != nil {
				return nil, err
			}
			target.requested = &requested
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// outstandingFor locks the target row and returns its unpaid remainder. The
// lock is held for the rest of the transaction, so the later ApplyPayment
// reads the same state.
func (s *paymentService) outstandingFor(ctx context.Context, target globalTarget) (decimal.Decimal, error) {
	switch target.docType {
	case model.DocTypeFacture:
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, target.docID)
		if err != nil {
			return decimal.Zero, err
		}
		return invoice.MontantTTC.Sub(invoice.MontantPaye), nil
	case model.DocTypeOrdre:
		order, err := s.orderRepo.FindByIDForUpdate(ctx, target.docID)
		if err != nil {
			return decimal.Zero, err
		}
		return order.MontantTTC.Sub(order.MontantPaye), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported document_type %s", target.docType)
	}
}

func parsePositiveAmount(raw string) (decimal.Decimal, error) {
	montant, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid montant: %w", err)
	}
	if montant.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return montant, nil
}

func validatePaymentMode(mode string) error {
	switch mode {
	case model.ModeEspeces, model.ModeCheque, model.ModeVirement, model.ModeMobileMoney:
		return nil
	default:
		return fmt.Errorf("unsupported mode_paiement %s", mode)
	}
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &id, nil
}

func toPaymentResponse(payment *model.Payment) PaymentResponse {
	res := PaymentResponse{
		ID:           payment.ID.String(),
		DocumentType: payment.DocumentType,
		DocumentID:   payment.DocumentID.String(),
		ClientID:     payment.ClientID.String(),
		Montant:      payment.Montant.StringFixed(2),
		ModePaiement: payment.ModePaiement,
		Reference:    payment.Reference,
		DatePaiement: payment.DatePaiement.Format("2006-01-02"),
		CreatedAt:    payment.CreatedAt.Format(time.RFC3339),
	}
	if payment.Client != nil {
		res.ClientNom = payment.Client.Nom
	}
	if payment.BanqueID != nil {
		banqueID := payment.BanqueID.String()
		res.BanqueID = &banqueID
	}
	if payment.Banque != nil {
		res.BanqueNom = payment.Banque.Nom
	}
	return res
}
