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

type CreateWorkOrderRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	Categorie  string `json:"categorie"`
	ExonereTVA bool   `json:"exonere_tva"`
	ExonereCSS bool   `json:"exonere_css"`
	Notes      string `json:"notes"`
	ChildCollectionsInput
}

type UpdateWorkOrderRequest struct {
	ClientID   *string `json:"client_id"`
	Categorie  *string `json:"categorie"`
	ExonereTVA *bool   `json:"exonere_tva"`
	ExonereCSS *bool   `json:"exonere_css"`
	Notes      *string `json:"notes"`
	ChildCollectionsInput
}

type WorkOrderResponse struct {
	ID            string            `json:"id"`
	Numero        string            `json:"numero"`
	ClientID      string            `json:"client_id"`
	ClientNom     string            `json:"client_nom,omitempty"`
	Categorie     string            `json:"categorie"`
	Statut        string            `json:"statut"`
	MontantHT     string            `json:"montant_ht"`
	MontantTVA    string            `json:"montant_tva"`
	MontantCSS    string            `json:"montant_css"`
	MontantTTC    string            `json:"montant_ttc"`
	MontantPaye   string            `json:"montant_paye"`
	ExonereTVA    bool              `json:"exonere_tva"`
	ExonereCSS    bool              `json:"exonere_css"`
	Notes         string            `json:"notes,omitempty"`
	SourceDevisID *string           `json:"source_devis_id,omitempty"`
	LineItems     []model.LineItem  `json:"line_items,omitempty"`
	Containers    []model.Container `json:"containers,omitempty"`
	Lots          []model.Lot       `json:"lots,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

// WorkOrderService drives the ordre de travail lifecycle: en_cours until fully
// paid (termine) or converted to an invoice (facture). Orders accept direct
// payments as long as they have not been converted.
type WorkOrderService interface {
	Create(ctx context.Context, req CreateWorkOrderRequest) (WorkOrderResponse, error)
	Get(ctx context.Context, id string) (WorkOrderResponse, error)
	List(ctx context.Context, filter repository.WorkOrderListFilter) ([]WorkOrderResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateWorkOrderRequest) (WorkOrderResponse, error)
	Duplicate(ctx context.Context, id string) (WorkOrderResponse, error)

	// ConvertToInvoice creates a draft invoice carrying the order's client,
	// category, exemptions and children, then marks the order facture.
	ConvertToInvoice(ctx context.Context, id string) (InvoiceResponse, error)

	// ApplyPayment and WithdrawPayment run inside the caller's transaction,
	// mirroring the invoice contract. Payments on an order do not touch the
	// client solde, which is derived from invoices only.
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.WorkOrder, error)
	WithdrawPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.WorkOrder, error)
}

type workOrderService struct {
	orderRepo    repository.WorkOrderRepository
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

func NewWorkOrderService(
	orderRepo repository.WorkOrderRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	lineItemRepo repository.LineItemRepository,
	numbering NumberingService,
	totals TotalsService,
	balance BalanceService,
	txManager repository.TransactionManager,
	audit AuditService,
	notifier NotificationService,
) WorkOrderService {
	return &workOrderService{
		orderRepo:    orderRepo,
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

func (s *workOrderService) Create(ctx context.Context, req CreateWorkOrderRequest) (WorkOrderResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return WorkOrderResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}

	categorie := req.Categorie
	if categorie == "" {
		categorie = model.CategorieStandard
	}

	var order *model.WorkOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeOrdre)
		if err != nil {
			return err
		}

		order = &model.WorkOrder{
			Numero:      numero,
			ClientID:    clientID,
			Categorie:   categorie,
			Statut:      model.OrdreStatusEnCours,
			MontantPaye: decimal.Zero,
			ExonereTVA:  req.ExonereTVA,
			ExonereCSS:  req.ExonereCSS,
			Notes:       req.Notes,
		}
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create work order: %w", err)
		}
		if err := insertChildren(txCtx, s.lineItemRepo, model.DocTypeOrdre, order.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, order)
	})
	if err != nil {
		return WorkOrderResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateOrdre, order.ID.String(), order.Numero, req)
	s.notifier.DocumentCreated(model.DocTypeOrdre, order.Numero)

	return s.Get(ctx, order.ID.String())
}

func (s *workOrderService) Get(ctx context.Context, id string) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, fmt.Errorf("invalid work order id: %w", err)
	}
	order, err := s.orderRepo.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}
	return toWorkOrderResponse(order), nil
}

func (s *workOrderService) List(ctx context.Context, filter repository.WorkOrderListFilter) ([]WorkOrderResponse, int64, error) {
	filter.Page, filter.Limit = pagination.Clamp(filter.Page, filter.Limit)

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]WorkOrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toWorkOrderResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *workOrderService) Update(ctx context.Context, id string, req UpdateWorkOrderRequest) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, fmt.Errorf("invalid work order id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Statut == model.OrdreStatusAnnule {
			return ErrDocumentCancelled
		}
		if order.Statut == model.OrdreStatusFacture {
			return ErrAlreadyInvoiced
		}

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
			order.ClientID = clientID
		}
		if req.Categorie != nil {
			order.Categorie = *req.Categorie
		}
		if req.ExonereTVA != nil {
			order.ExonereTVA = *req.ExonereTVA
		}
		if req.ExonereCSS != nil {
			order.ExonereCSS = *req.ExonereCSS
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}

		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to save work order: %w", err)
		}
		if err := replaceChildren(txCtx, s.lineItemRepo, model.DocTypeOrdre, order.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, order)
	})
	if err != nil {
		return WorkOrderResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *workOrderService) Duplicate(ctx context.Context, id string) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, fmt.Errorf("invalid work order id: %w", err)
	}
	source, err := s.orderRepo.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	var duplicate *model.WorkOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeOrdre)
		if err != nil {
			return err
		}

		duplicate = &model.WorkOrder{
			Numero:      numero,
			ClientID:    source.ClientID,
			Categorie:   source.Categorie,
			Statut:      model.OrdreStatusEnCours,
			MontantPaye: decimal.Zero,
			ExonereTVA:  source.ExonereTVA,
			ExonereCSS:  source.ExonereCSS,
			Notes:       source.Notes,
		}
		if err := s.orderRepo.Create(txCtx, duplicate); err != nil {
			return fmt.Errorf("failed to duplicate work order: %w", err)
		}

		items, containers, lots := copyChildren(model.DocTypeOrdre, duplicate.ID, source.LineItems, source.Containers, source.Lots)
		if err := insertCopiedChildren(txCtx, s.lineItemRepo, items, containers, lots); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, duplicate)
	})
	if err != nil {
		return WorkOrderResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateOrdre, duplicate.ID.String(), duplicate.Numero,
		map[string]string{"duplicated_from": source.Numero})
	s.notifier.DocumentCreated(model.DocTypeOrdre, duplicate.Numero)

	return s.Get(ctx, duplicate.ID.String())
}

func (s *workOrderService) ConvertToInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid work order id: %w", err)
	}

	var invoice *model.Invoice
	var orderNumero string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Statut == model.OrdreStatusAnnule {
			return ErrAlreadyCancelled
		}
		if order.Statut == model.OrdreStatusFacture {
			return ErrAlreadyConverted
		}
		orderNumero = order.Numero

		items, containers, lots, err := s.lineItemRepo.ListFor(txCtx, model.DocTypeOrdre, order.ID)
		if err != nil {
			return fmt.Errorf("failed to load work order children: %w", err)
		}

		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeFacture)
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			Numero:        numero,
			ClientID:      order.ClientID,
			Categorie:     order.Categorie,
			Statut:        model.InvoiceStatusBrouillon,
			DateEmission:  time.Now(),
			MontantPaye:   decimal.Zero,
			ExonereTVA:    order.ExonereTVA,
			ExonereCSS:    order.ExonereCSS,
			Notes:         order.Notes,
			SourceOrdreID: &order.ID,
		}
		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice from work order: %w", err)
		}

		copiedItems, copiedContainers, copiedLots := copyChildren(model.DocTypeFacture, invoice.ID, items, containers, lots)
		if err := insertCopiedChildren(txCtx, s.lineItemRepo, copiedItems, copiedContainers, copiedLots); err != nil {
			return err
		}
		if err := s.totals.Recompute(txCtx, invoice); err != nil {
			return err
		}

		order.Statut = model.OrdreStatusFacture
		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to mark work order as invoiced: %w", err)
		}
		return s.balance.RecomputeClientSolde(txCtx, order.ClientID)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionConvertOrdre, invoice.ID.String(), invoice.Numero,
		map[string]string{"source_ordre": orderNumero})
	s.notifier.DocumentCreated(model.DocTypeFacture, invoice.Numero)

	reloaded, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoice.ID)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(reloaded), nil
}

func (s *workOrderService) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.WorkOrder, error) {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Statut == model.OrdreStatusAnnule {
		return nil, ErrDocumentCancelled
	}
	if order.Statut == model.OrdreStatusFacture {
		return nil, ErrAlreadyInvoiced
	}

	order.MontantPaye = order.MontantPaye.Add(amount)
	if order.MontantPaye.GreaterThanOrEqual(order.MontantTTC) {
		order.Statut = model.OrdreStatusTermine
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}
	return order, nil
}

func (s *workOrderService) WithdrawPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.WorkOrder, error) {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	paid := order.MontantPaye.Sub(amount)
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	order.MontantPaye = paid

	if order.Statut == model.OrdreStatusTermine && paid.LessThan(order.MontantTTC) {
		order.Statut = model.OrdreStatusEnCours
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to withdraw payment: %w", err)
	}
	return order, nil
}

func toWorkOrderResponse(order *model.WorkOrder) WorkOrderResponse {
	res := WorkOrderResponse{
		ID:          order.ID.String(),
		Numero:      order.Numero,
		ClientID:    order.ClientID.String(),
		Categorie:   order.Categorie,
		Statut:      order.Statut,
		MontantHT:   order.MontantHT.StringFixed(2),
		MontantTVA:  order.MontantTVA.StringFixed(2),
		MontantCSS:  order.MontantCSS.StringFixed(2),
		MontantTTC:  order.MontantTTC.StringFixed(2),
		MontantPaye: order.MontantPaye.StringFixed(2),
		ExonereTVA:  order.ExonereTVA,
		ExonereCSS:  order.ExonereCSS,
		Notes:       order.Notes,
		LineItems:   order.LineItems,
		Containers:  order.Containers,
		Lots:        order.Lots,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if order.Client != nil {
		res.ClientNom = order.Client.Nom
	}
	if order.SourceDevisID != nil {
		sourceID := order.SourceDevisID.String()
		res.SourceDevisID = &sourceID
	}
	return res
}
