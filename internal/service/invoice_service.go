package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/authctx"
	"gescom-backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateInvoiceRequest struct {
	ClientID     string  `json:"client_id" binding:"required"`
	Categorie    string  `json:"categorie"`
	ExonereTVA   bool    `json:"exonere_tva"`
	ExonereCSS   bool    `json:"exonere_css"`
	DateEcheance *string `json:"date_echeance"` // YYYY-MM-DD
	Notes        string  `json:"notes"`
	ChildCollectionsInput
}

// UpdateInvoiceRequest uses pointers throughout: absent fields stay untouched.
type UpdateInvoiceRequest struct {
	ClientID     *string `json:"client_id"`
	Categorie    *string `json:"categorie"`
	ExonereTVA   *bool   `json:"exonere_tva"`
	ExonereCSS   *bool   `json:"exonere_css"`
	DateEcheance *string `json:"date_echeance"`
	Notes        *string `json:"notes"`
	ChildCollectionsInput
}

type InvoiceResponse struct {
	ID            string            `json:"id"`
	Numero        string            `json:"numero"`
	ClientID      string            `json:"client_id"`
	ClientNom     string            `json:"client_nom,omitempty"`
	Categorie     string            `json:"categorie"`
	Statut        string            `json:"statut"`
	DateEmission  string            `json:"date_emission"`
	DateEcheance  *string           `json:"date_echeance,omitempty"`
	MontantHT     string            `json:"montant_ht"`
	MontantTVA    string            `json:"montant_tva"`
	MontantCSS    string            `json:"montant_css"`
	MontantTTC    string            `json:"montant_ttc"`
	MontantPaye   string            `json:"montant_paye"`
	ExonereTVA    bool              `json:"exonere_tva"`
	ExonereCSS    bool              `json:"exonere_css"`
	Notes         string            `json:"notes,omitempty"`
	SourceOrdreID *string           `json:"source_ordre_id,omitempty"`
	LineItems     []model.LineItem  `json:"line_items,omitempty"`
	Containers    []model.Container `json:"containers,omitempty"`
	Lots          []model.Lot       `json:"lots,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// InvoiceService drives the invoice lifecycle:
// brouillon -> validee -> envoyee -> partiellement_payee -> payee, with
// annulee reachable through the cancellation service only.
type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error)
	Get(ctx context.Context, id string) (InvoiceResponse, error)
	List(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	Validate(ctx context.Context, id string) (InvoiceResponse, error)
	Send(ctx context.Context, id string) (InvoiceResponse, error)
	Duplicate(ctx context.Context, id string) (InvoiceResponse, error)

	// ApplyPayment and WithdrawPayment run inside the caller's transaction:
	// they lock the invoice row, move montant_paye and recompute the status
	// and the client solde. WithdrawPayment floors montant_paye at zero.
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Invoice, error)
	WithdrawPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Invoice, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	lineItemRepo repository.LineItemRepository
	numbering    NumberingService
	totals       TotalsService
	balance      BalanceService
	txManager    repository.TransactionManager
	audit        AuditService
	notifier     NotificationService
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	lineItemRepo repository.LineItemRepository,
	numbering NumberingService,
	totals TotalsService,
	balance BalanceService,
	txManager repository.TransactionManager,
	audit AuditService,
	notifier NotificationService,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		lineItemRepo: lineItemRepo,
		numbering:    numbering,
		totals:       totals,
		balance:      balance,
		txManager:    txManager,
		audit:        audit,
		notifier:     notifier,
	}
}

func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}
	dateEcheance, err := parseOptionalDate(req.DateEcheance)
	if err != nil {
		return InvoiceResponse{}, err
	}

	categorie := req.Categorie
	if categorie == "" {
		categorie = model.CategorieStandard
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeFacture)
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			Numero:       numero,
			ClientID:     clientID,
			Categorie:    categorie,
			Statut:       model.InvoiceStatusBrouillon,
			DateEmission: time.Now(),
			DateEcheance: dateEcheance,
			MontantPaye:  decimal.Zero,
			ExonereTVA:   req.ExonereTVA,
			ExonereCSS:   req.ExonereCSS,
			Notes:        req.Notes,
		}
		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		if err := insertChildren(txCtx, s.lineItemRepo, model.DocTypeFacture, invoice.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		if err := s.totals.Recompute(txCtx, invoice); err != nil {
			return err
		}
		return s.balance.RecomputeClientSolde(txCtx, clientID)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateFacture, invoice.ID.String(), invoice.Numero, req)
	s.notifier.DocumentCreated(model.DocTypeFacture, invoice.Numero)

	return s.Get(ctx, invoice.ID.String())
}

func (s *invoiceService) Get(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}
	invoice, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) List(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	filter.Page, filter.Limit = pagination.Clamp(filter.Page, filter.Limit)

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, toInvoiceResponse(&invoices[i]))
	}
	return res, total, nil
}

func (s *invoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Statut == model.InvoiceStatusAnnulee {
			return ErrDocumentCancelled
		}

		previousClient := invoice.ClientID
		if req.ClientID != nil {
			clientID, err := uuid.Parse(*req.ClientID)
			if err != nil {
				return fmt.Errorf("invalid client_id: %w", err)
			}
			if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClientNotFound
				}
				return err
			}
			invoice.ClientID = clientID
		}
		if req.Categorie != nil {
			invoice.Categorie = *req.Categorie
		}
		if req.ExonereTVA != nil {
			invoice.ExonereTVA = *req.ExonereTVA
		}
		if req.ExonereCSS != nil {
			invoice.ExonereCSS = *req.ExonereCSS
		}
		if req.DateEcheance != nil {
			dateEcheance, err := parseOptionalDate(req.DateEcheance)
			if err != nil {
				return err
			}
			invoice.DateEcheance = dateEcheance
		}
		if req.Notes != nil {
			invoice.Notes = *req.Notes
		}

		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		if err := replaceChildren(txCtx, s.lineItemRepo, model.DocTypeFacture, invoice.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		if err := s.totals.Recompute(txCtx, invoice); err != nil {
			return err
		}
		if err := s.balance.RecomputeClientSolde(txCtx, invoice.ClientID); err != nil {
			return err
		}
		if previousClient != invoice.ClientID {
			return s.balance.RecomputeClientSolde(txCtx, previousClient)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *invoiceService) Validate(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	var numero string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Statut != model.InvoiceStatusBrouillon {
			return ErrNotDraft
		}
		invoice.Statut = model.InvoiceStatusValidee
		numero = invoice.Numero
		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionValidateFacture, invoiceID.String(), numero, nil)
	return s.Get(ctx, id)
}

func (s *invoiceService) Send(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Statut != model.InvoiceStatusBrouillon && invoice.Statut != model.InvoiceStatusValidee {
			return fmt.Errorf("cannot send invoice in status %s", invoice.Statut)
		}
		invoice.Statut = model.InvoiceStatusEnvoyee
		return s.invoiceRepo.Save(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return s.Get(ctx, id)
}

// Duplicate creates a fresh draft carrying the source's client, category,
// exemptions and children. Payments and status do not carry over.
func (s *invoiceService) Duplicate(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}
	source, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, err
	}

	var duplicate *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeFacture)
		if err != nil {
			return err
		}

		duplicate = &model.Invoice{
			Numero:       numero,
			ClientID:     source.ClientID,
			Categorie:    source.Categorie,
			Statut:       model.InvoiceStatusBrouillon,
			DateEmission: time.Now(),
			DateEcheance: source.DateEcheance,
			MontantPaye:  decimal.Zero,
			ExonereTVA:   source.ExonereTVA,
			ExonereCSS:   source.ExonereCSS,
			Notes:        source.Notes,
		}
		if err := s.invoiceRepo.Create(txCtx, duplicate); err != nil {
			return fmt.Errorf("failed to duplicate invoice: %w", err)
		}

		items, containers, lots := copyChildren(model.DocTypeFacture, duplicate.ID, source.LineItems, source.Containers, source.Lots)
		if err := insertCopiedChildren(txCtx, s.lineItemRepo, items, containers, lots); err != nil {
			return err
		}
		if err := s.totals.Recompute(txCtx, duplicate); err != nil {
			return err
		}
		return s.balance.RecomputeClientSolde(txCtx, duplicate.ClientID)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateFacture, duplicate.ID.String(), duplicate.Numero,
		map[string]string{"duplicated_from": source.Numero})
	s.notifier.DocumentCreated(model.DocTypeFacture, duplicate.Numero)

	return s.Get(ctx, duplicate.ID.String())
}

func (s *invoiceService) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Statut == model.InvoiceStatusAnnulee {
		return nil, ErrDocumentCancelled
	}

	invoice.MontantPaye = invoice.MontantPaye.Add(amount)
	switch {
	case invoice.MontantPaye.GreaterThanOrEqual(invoice.MontantTTC):
		invoice.Statut = model.InvoiceStatusPayee
	case invoice.MontantPaye.GreaterThan(decimal.Zero):
		invoice.Statut = model.InvoiceStatusPartiellementPayee
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}
	if err := s.balance.RecomputeClientSolde(ctx, invoice.ClientID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) WithdrawPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	paid := invoice.MontantPaye.Sub(amount)
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	invoice.MontantPaye = paid

	// Only payment-derived statuses move backwards; a cancelled invoice keeps
	// its status while its paid amount is unwound.
	if invoice.Statut == model.InvoiceStatusPayee || invoice.Statut == model.InvoiceStatusPartiellementPayee {
		switch {
		case paid.IsZero():
			invoice.Statut = model.InvoiceStatusValidee
		case paid.LessThan(invoice.MontantTTC):
			invoice.Statut = model.InvoiceStatusPartiellementPayee
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to withdraw payment: %w", err)
	}
	if err := s.balance.RecomputeClientSolde(ctx, invoice.ClientID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *raw, err)
	}
	return &parsed, nil
}

func toInvoiceResponse(invoice *model.Invoice) InvoiceResponse {
	res := InvoiceResponse{
		ID:           invoice.ID.String(),
		Numero:       invoice.Numero,
		ClientID:     invoice.ClientID.String(),
		Categorie:    invoice.Categorie,
		Statut:       invoice.Statut,
		DateEmission: invoice.DateEmission.Format("2006-01-02"),
		MontantHT:    invoice.MontantHT.StringFixed(2),
		MontantTVA:   invoice.MontantTVA.StringFixed(2),
		MontantCSS:   invoice.MontantCSS.StringFixed(2),
		MontantTTC:   invoice.MontantTTC.StringFixed(2),
		MontantPaye:  invoice.MontantPaye.StringFixed(2),
		ExonereTVA:   invoice.ExonereTVA,
		ExonereCSS:   invoice.ExonereCSS,
		Notes:        invoice.Notes,
		LineItems:    invoice.LineItems,
		Containers:   invoice.Containers,
		Lots:         invoice.Lots,
		CreatedAt:    invoice.CreatedAt.Format(time.RFC3339),
	}
	if invoice.Client != nil {
		res.ClientNom = invoice.Client.Nom
	}
	if invoice.DateEcheance != nil {
		echeance := invoice.DateEcheance.Format("2006-01-02")
		res.DateEcheance = &echeance
	}
	if invoice.SourceOrdreID != nil {
		sourceID := invoice.SourceOrdreID.String()
		res.SourceOrdreID = &sourceID
	}
	return res
}
