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

type CancelDocumentRequest struct {
	Motif        string `json:"motif" binding:"required"`
	GenererAvoir bool   `json:"generer_avoir"`
}

type RefundRequest struct {
	Montant  string  `json:"montant"` // empty refunds the whole remaining credit
	BanqueID *string `json:"banque_id"`
}

type CancellationResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	DocumentID       string  `json:"document_id"`
	DocumentNumero   string  `json:"document_numero"`
	Montant          string  `json:"montant"`
	Motif            string  `json:"motif"`
	AvoirGenere      bool    `json:"avoir_genere"`
	NumeroAvoir      *string `json:"numero_avoir,omitempty"`
	Rembourse        bool    `json:"rembourse"`
	MontantRembourse string  `json:"montant_rembourse"`
	SoldeAvoir       string  `json:"solde_avoir"`
	CreatedAt        string  `json:"created_at"`
}

// CancellationService reverses documents. Cancelling a paid document unwinds
// every payment through the ledger and, on request, parks the money on a
// numbered credit note (avoir) that can later be refunded in one or more
// instalments.
type CancellationService interface {
	CancelInvoice(ctx context.Context, id string, req CancelDocumentRequest) (CancellationResponse, error)
	CancelWorkOrder(ctx context.Context, id string, req CancelDocumentRequest) (CancellationResponse, error)
	CancelQuote(ctx context.Context, id string, motif string) (CancellationResponse, error)
	Refund(ctx context.Context, id string, req RefundRequest) (CancellationResponse, error)
	Get(ctx context.Context, id string) (CancellationResponse, error)
	List(ctx context.Context, filter repository.CancellationListFilter) ([]CancellationResponse, int64, error)
}

type cancellationService struct {
	cancellationRepo repository.CancellationRepository
	invoiceRepo      repository.InvoiceRepository
	orderRepo        repository.WorkOrderRepository
	quoteRepo        repository.QuoteRepository
	paymentRepo      repository.PaymentRepository
	numbering        NumberingService
	ledger           LedgerService
	balance          BalanceService
	txManager        repository.TransactionManager
	audit            AuditService
	notifier         NotificationService
}

func NewCancellationService(
	cancellationRepo repository.CancellationRepository,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.WorkOrderRepository,
	quoteRepo repository.QuoteRepository,
	paymentRepo repository.PaymentRepository,
	numbering NumberingService,
	ledger LedgerService,
	balance BalanceService,
	txManager repository.TransactionManager,
	audit AuditService,
	notifier NotificationService,
) CancellationService {
	return &cancellationService{
		cancellationRepo: cancellationRepo,
		invoiceRepo:      invoiceRepo,
		orderRepo:        orderRepo,
		quoteRepo:        quoteRepo,
		paymentRepo:      paymentRepo,
		numbering:        numbering,
		ledger:           ledger,
		balance:          balance,
		txManager:        txManager,
		audit:            audit,
		notifier:         notifier,
	}
}

func (s *cancellationService) CancelInvoice(ctx context.Context, id string, req CancelDocumentRequest) (CancellationResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return CancellationResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	var cancellation *model.Cancellation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Statut == model.InvoiceStatusAnnulee {
			return ErrAlreadyCancelled
		}

		payments, err := s.paymentRepo.ListForDocument(txCtx, model.DocTypeFacture, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to list invoice payments: %w", err)
		}

		cancellation = &model.Cancellation{
			Type:           model.DocTypeFacture,
			DocumentID:     invoice.ID,
			DocumentNumero: invoice.Numero,
			Montant:        invoice.MontantTTC,
			Motif:          req.Motif,
		}
		if err := s.attachCreditNote(txCtx, cancellation, req.GenererAvoir, payments); err != nil {
			return err
		}
		if err := s.reversePayments(txCtx, payments, fmt.Sprintf("Annulation facture %s", invoice.Numero)); err != nil {
			return err
		}

		invoice.Statut = model.InvoiceStatusAnnulee
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to cancel invoice: %w", err)
		}
		if err := s.cancellationRepo.Create(txCtx, cancellation); err != nil {
			return fmt.Errorf("failed to record cancellation: %w", err)
		}
		return s.balance.RecomputeClientSolde(txCtx, invoice.ClientID)
	})
	if err != nil {
		return CancellationResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCancelDocument, cancellation.ID.String(), cancellation.DocumentNumero, req)
	s.notifier.DocumentCancelled(model.DocTypeFacture, cancellation.DocumentNumero)

	return toCancellationResponse(cancellation), nil
}

func (s *cancellationService) CancelWorkOrder(ctx context.Context, id string, req CancelDocumentRequest) (CancellationResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return CancellationResponse{}, fmt.Errorf("invalid work order id: %w", err)
	}

	var cancellation *model.Cancellation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Statut == model.OrdreStatusAnnule {
			return ErrAlreadyCancelled
		}
		if order.Statut == model.OrdreStatusFacture {
			return ErrAlreadyInvoiced
		}

		payments, err := s.paymentRepo.ListForDocument(txCtx, model.DocTypeOrdre, order.ID)
		if err != nil {
			return fmt.Errorf("failed to list work order payments: %w", err)
		}

		cancellation = &model.Cancellation{
			Type:           model.DocTypeOrdre,
			DocumentID:     order.ID,
			DocumentNumero: order.Numero,
			Montant:        workOrderCancellationAmount(order),
			Motif:          req.Motif,
		}
		if err := s.attachCreditNote(txCtx, cancellation, req.GenererAvoir, payments); err != nil {
			return err
		}
		if err := s.reversePayments(txCtx, payments, fmt.Sprintf("Annulation ordre %s", order.Numero)); err != nil {
			return err
		}

		order.Statut = model.OrdreStatusAnnule
		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to cancel work order: %w", err)
		}
		return s.cancellationRepo.Create(txCtx, cancellation)
	})
	if err != nil {
		return CancellationResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCancelDocument, cancellation.ID.String(), cancellation.DocumentNumero, req)
	s.notifier.DocumentCancelled(model.DocTypeOrdre, cancellation.DocumentNumero)

	return toCancellationResponse(cancellation), nil
}

func (s *cancellationService) CancelQuote(ctx context.Context, id string, motif string) (CancellationResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return CancellationResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}

	var cancellation *model.Cancellation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err := s.quoteRepo.FindByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote.Statut == model.DevisStatusAnnule {
			return ErrAlreadyCancelled
		}
		if quote.Statut == model.DevisStatusConverti {
			return ErrAlreadyConverted
		}

		quote.Statut = model.DevisStatusAnnule
		if err := s.quoteRepo.Save(txCtx, quote); err != nil {
			return fmt.Errorf("failed to cancel quote: %w", err)
		}

		cancellation = &model.Cancellation{
			Type:           model.DocTypeDevis,
			DocumentID:     quote.ID,
			DocumentNumero: quote.Numero,
			Montant:        quote.MontantTTC,
			Motif:          motif,
		}
		return s.cancellationRepo.Create(txCtx, cancellation)
	})
	if err != nil {
		return CancellationResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCancelDocument, cancellation.ID.String(), cancellation.DocumentNumero,
		map[string]string{"motif": motif})
	s.notifier.DocumentCancelled(model.DocTypeDevis, cancellation.DocumentNumero)

	return toCancellationResponse(cancellation), nil
}

func (s *cancellationService) Refund(ctx context.Context, id string, req RefundRequest) (CancellationResponse, error) {
	cancellationID, err := uuid.Parse(id)
	if err != nil {
		return CancellationResponse{}, fmt.Errorf("invalid cancellation id: %w", err)
	}
	banqueID, err := parseOptionalUUID(req.BanqueID, "banque_id")
	if err != nil {
		return CancellationResponse{}, err
	}

	var cancellation *model.Cancellation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		cancellation, err = s.cancellationRepo.FindByIDForUpdate(txCtx, cancellationID)
		if err != nil {
			return err
		}
		if !cancellation.AvoirGenere || cancellation.NumeroAvoir == nil {
			return ErrNoCreditNote
		}

		amount := cancellation.SoldeAvoir
		if req.Montant != "" {
			amount, err = parsePositiveAmount(req.Montant)
			if err != nil {
				return err
			}
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
		if amount.GreaterThan(cancellation.SoldeAvoir) {
			return ErrRefundExceedsCredit
		}

		if _, err := s.ledger.Record(txCtx, LedgerEntry{
			Type:     model.MouvementSortie,
			Montant:  amount,
			BanqueID: banqueID,
			Libelle:  fmt.Sprintf("Remboursement avoir %s", *cancellation.NumeroAvoir),
		}); err != nil {
			return err
		}

		cancellation.MontantRembourse = cancellation.MontantRembourse.Add(amount)
		cancellation.SoldeAvoir = cancellation.SoldeAvoir.Sub(amount)
		if cancellation.SoldeAvoir.IsZero() {
			cancellation.Rembourse = true
		}
		return s.cancellationRepo.Save(txCtx, cancellation)
	})
	if err != nil {
		return CancellationResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionRefundAvoir, cancellation.ID.String(), *cancellation.NumeroAvoir, req)
	return toCancellationResponse(cancellation), nil
}

func (s *cancellationService) Get(ctx context.Context, id string) (CancellationResponse, error) {
	cancellationID, err := uuid.Parse(id)
	if err != nil {
		return CancellationResponse{}, fmt.Errorf("invalid cancellation id: %w", err)
	}
	cancellation, err := s.cancellationRepo.FindByID(ctx, cancellationID)
	if err != nil {
		return CancellationResponse{}, err
	}
	return toCancellationResponse(cancellation), nil
}

func (s *cancellationService) List(ctx context.Context, filter repository.CancellationListFilter) ([]CancellationResponse, int64, error) {
	filter.Page, filter.Limit = pagination.Clamp(filter.Page, filter.Limit)

	cancellations, total, err := s.cancellationRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CancellationResponse, 0, len(cancellations))
	for i := range cancellations {
		res = append(res, toCancellationResponse(&cancellations[i]))
	}
	return res, total, nil
}

// attachCreditNote numbers an avoir carrying the sum of the payments being
// reversed. No payments means no money to park, so no avoir even when asked.
func (s *cancellationService) attachCreditNote(ctx context.Context, cancellation *model.Cancellation, requested bool, payments []model.Payment) error {
	if !requested || len(payments) == 0 {
		return nil
	}

	numeroAvoir, err := s.numbering.GenerateNumber(ctx, model.DocTypeAvoir)
	if err != nil {
		return err
	}

	totalPaid := decimal.Zero
	for _, payment := range payments {
		totalPaid = totalPaid.Add(payment.Montant)
	}

	cancellation.AvoirGenere = true
	cancellation.NumeroAvoir = &numeroAvoir
	cancellation.SoldeAvoir = totalPaid
	return nil
}

// reversePayments appends one compensating sortie per payment, decrements the
// bank where the payment was bank-routed, then hard-deletes the payment row.
func (s *cancellationService) reversePayments(ctx context.Context, payments []model.Payment, libelle string) error {
	for i := range payments {
		payment := &payments[i]
		if _, err := s.ledger.Record(ctx, LedgerEntry{
			Type:       model.MouvementSortie,
			Montant:    payment.Montant,
			BanqueID:   payment.BanqueID,
			PaiementID: &payment.ID,
			Libelle:    libelle,
		}); err != nil {
			return err
		}
		if err := s.paymentRepo.Delete(ctx, payment.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
	}
	return nil
}

// workOrderCancellationAmount falls back through the stored total fields so
// legacy rows whose TTC was never derived still cancel for a non-zero amount.
func workOrderCancellationAmount(order *model.WorkOrder) decimal.Decimal {
	if order.MontantTTC.GreaterThan(decimal.Zero) {
		return order.MontantTTC
	}
	recomposed := order.MontantHT.Add(order.MontantTVA).Add(order.MontantCSS)
	if recomposed.GreaterThan(decimal.Zero) {
		return recomposed
	}
	if order.MontantHT.GreaterThan(decimal.Zero) {
		return order.MontantHT
	}
	return decimal.Zero
}

func toCancellationResponse(cancellation *model.Cancellation) CancellationResponse {
	return CancellationResponse{
		ID:               cancellation.ID.String(),
		Type:             cancellation.Type,
		DocumentID:       cancellation.DocumentID.String(),
		DocumentNumero:   cancellation.DocumentNumero,
		Montant:          cancellation.Montant.StringFixed(2),
		Motif:            cancellation.Motif,
		AvoirGenere:      cancellation.AvoirGenere,
		NumeroAvoir:      cancellation.NumeroAvoir,
		Rembourse:        cancellation.Rembourse,
		MontantRembourse: cancellation.MontantRembourse.StringFixed(2),
		SoldeAvoir:       cancellation.SoldeAvoir.StringFixed(2),
		CreatedAt:        cancellation.CreatedAt.Format(time.RFC3339),
	}
}
