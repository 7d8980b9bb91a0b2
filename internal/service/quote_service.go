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

type CreateQuoteRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	Categorie  string `json:"categorie"`
	ExonereTVA bool   `json:"exonere_tva"`
	ExonereCSS bool   `json:"exonere_css"`
	Notes      string `json:"notes"`
	ChildCollectionsInput
}

type UpdateQuoteRequest struct {
	ClientID   *string `json:"client_id"`
	Categorie  *string `json:"categorie"`
	ExonereTVA *bool   `json:"exonere_tva"`
	ExonereCSS *bool   `json:"exonere_css"`
	Notes      *string `json:"notes"`
	ChildCollectionsInput
}

type QuoteResponse struct {
	ID         string            `json:"id"`
	Numero     string            `json:"numero"`
	ClientID   string            `json:"client_id"`
	ClientNom  string            `json:"client_nom,omitempty"`
	Categorie  string            `json:"categorie"`
	Statut     string            `json:"statut"`
	MontantHT  string            `json:"montant_ht"`
	MontantTVA string            `json:"montant_tva"`
	MontantCSS string            `json:"montant_css"`
	MontantTTC string            `json:"montant_ttc"`
	ExonereTVA bool              `json:"exonere_tva"`
	ExonereCSS bool              `json:"exonere_css"`
	Notes      string            `json:"notes,omitempty"`
	LineItems  []model.LineItem  `json:"line_items,omitempty"`
	Containers []model.Container `json:"containers,omitempty"`
	Lots       []model.Lot       `json:"lots,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// QuoteService drives the devis lifecycle: brouillon -> envoye -> converti,
// with annule reachable through the cancellation service. Quotes carry no
// payments; conversion hands the commercial content to a work order.
type QuoteService interface {
	Create(ctx context.Context, req CreateQuoteRequest) (QuoteResponse, error)
	Get(ctx context.Context, id string) (QuoteResponse, error)
	List(ctx context.Context, filter repository.QuoteListFilter) ([]QuoteResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateQuoteRequest) (QuoteResponse, error)
	Send(ctx context.Context, id string) (QuoteResponse, error)
	Duplicate(ctx context.Context, id string) (QuoteResponse, error)
	ConvertToWorkOrder(ctx context.Context, id string) (WorkOrderResponse, error)
}

type quoteService struct {
	quoteRepo    repository.QuoteRepository
	orderRepo    repository.WorkOrderRepository
	clientRepo   repository.ClientRepository
	lineItemRepo repository.LineItemRepository
	numbering    NumberingService
	totals       TotalsService
	txManager    repository.TransactionManager
	audit        AuditService
	notifier     NotificationService
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	orderRepo repository.WorkOrderRepository,
	clientRepo repository.ClientRepository,
	lineItemRepo repository.LineItemRepository,
	numbering NumberingService,
	totals TotalsService,
	txManager repository.TransactionManager,
	audit AuditService,
	notifier NotificationService,
) QuoteService {
	return &quoteService{
		quoteRepo:    quoteRepo,
		orderRepo:    orderRepo,
		clientRepo:   clientRepo,
		lineItemRepo: lineItemRepo,
		numbering:    numbering,
		totals:       totals,
		txManager:    txManager,
		audit:        audit,
		notifier:     notifier,
	}
}

func (s *quoteService) Create(ctx context.Context, req CreateQuoteRequest) (QuoteResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}

	categorie := req.Categorie
	if categorie == "" {
		categorie = model.CategorieStandard
	}

	var quote *model.Quote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.clientRepo.FindByID(txCtx, clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeDevis)
		if err != nil {
			return err
		}

		quote = &model.Quote{
			Numero:     numero,
			ClientID:   clientID,
			Categorie:  categorie,
			Statut:     model.DevisStatusBrouillon,
			ExonereTVA: req.ExonereTVA,
			ExonereCSS: req.ExonereCSS,
			Notes:      req.Notes,
		}
		if err := s.quoteRepo.Create(txCtx, quote); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		if err := insertChildren(txCtx, s.lineItemRepo, model.DocTypeDevis, quote.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, quote)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateDevis, quote.ID.String(), quote.Numero, req)
	s.notifier.DocumentCreated(model.DocTypeDevis, quote.Numero)

	return s.Get(ctx, quote.ID.String())
}

func (s *quoteService) Get(ctx context.Context, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}
	quote, err := s.quoteRepo.FindByIDWithRelations(ctx, quoteID)
	if err != nil {
		return QuoteResponse{}, err
	}
	return toQuoteResponse(quote), nil
}

func (s *quoteService) List(ctx context.Context, filter repository.QuoteListFilter) ([]QuoteResponse, int64, error) {
	filter.Page, filter.Limit = pagination.Clamp(filter.Page, filter.Limit)

	quotes, total, err := s.quoteRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		res = append(res, toQuoteResponse(&quotes[i]))
	}
	return res, total, nil
}

func (s *quoteService) Update(ctx context.Context, id string, req UpdateQuoteRequest) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err := s.quoteRepo.FindByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote.Statut == model.DevisStatusAnnule {
			return ErrDocumentCancelled
		}
		if quote.Statut == model.DevisStatusConverti {
			return ErrAlreadyConverted
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
			quote.ClientID = clientID
		}
		if req.Categorie != nil {
			quote.Categorie = *req.Categorie
		}
		if req.ExonereTVA != nil {
			quote.ExonereTVA = *req.ExonereTVA
		}
		if req.ExonereCSS != nil {
			quote.ExonereCSS = *req.ExonereCSS
		}
		if req.Notes != nil {
			quote.Notes = *req.Notes
		}

		if err := s.quoteRepo.Save(txCtx, quote); err != nil {
			return fmt.Errorf("failed to save quote: %w", err)
		}
		if err := replaceChildren(txCtx, s.lineItemRepo, model.DocTypeDevis, quote.ID, req.ChildCollectionsInput); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, quote)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *quoteService) Send(ctx context.Context, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err := s.quoteRepo.FindByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote.Statut != model.DevisStatusBrouillon {
			return ErrNotDraft
		}
		quote.Statut = model.DevisStatusEnvoye
		return s.quoteRepo.Save(txCtx, quote)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *quoteService) Duplicate(ctx context.Context, id string) (QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}
	source, err := s.quoteRepo.FindByIDWithRelations(ctx, quoteID)
	if err != nil {
		return QuoteResponse{}, err
	}

	var duplicate *model.Quote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeDevis)
		if err != nil {
			return err
		}

		duplicate = &model.Quote{
			Numero:     numero,
			ClientID:   source.ClientID,
			Categorie:  source.Categorie,
			Statut:     model.DevisStatusBrouillon,
			ExonereTVA: source.ExonereTVA,
			ExonereCSS: source.ExonereCSS,
			Notes:      source.Notes,
		}
		if err := s.quoteRepo.Create(txCtx, duplicate); err != nil {
			return fmt.Errorf("failed to duplicate quote: %w", err)
		}

		items, containers, lots := copyChildren(model.DocTypeDevis, duplicate.ID, source.LineItems, source.Containers, source.Lots)
		if err := insertCopiedChildren(txCtx, s.lineItemRepo, items, containers, lots); err != nil {
			return err
		}
		return s.totals.Recompute(txCtx, duplicate)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionCreateDevis, duplicate.ID.String(), duplicate.Numero,
		map[string]string{"duplicated_from": source.Numero})
	s.notifier.DocumentCreated(model.DocTypeDevis, duplicate.Numero)

	return s.Get(ctx, duplicate.ID.String())
}

func (s *quoteService) ConvertToWorkOrder(ctx context.Context, id string) (WorkOrderResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}

	var order *model.WorkOrder
	var quoteNumero string
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
		quoteNumero = quote.Numero

		items, containers, lots, err := s.lineItemRepo.ListFor(txCtx, model.DocTypeDevis, quote.ID)
		if err != nil {
			return fmt.Errorf("failed to load quote children: %w", err)
		}

		numero, err := s.numbering.GenerateNumber(txCtx, model.DocTypeOrdre)
		if err != nil {
			return err
		}

		order = &model.WorkOrder{
			Numero:        numero,
			ClientID:      quote.ClientID,
			Categorie:     quote.Categorie,
			Statut:        model.OrdreStatusEnCours,
			MontantPaye:   decimal.Zero,
			ExonereTVA:    quote.ExonereTVA,
			ExonereCSS:    quote.ExonereCSS,
			Notes:         quote.Notes,
			SourceDevisID: &quote.ID,
		}
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create work order from quote: %w", err)
		}

		copiedItems, copiedContainers, copiedLots := copyChildren(model.DocTypeOrdre, order.ID, items, containers, lots)
		if err := insertCopiedChildren(txCtx, s.lineItemRepo, copiedItems, copiedContainers, copiedLots); err != nil {
			return err
		}
		if err := s.totals.Recompute(txCtx, order); err != nil {
			return err
		}

		quote.Statut = model.DevisStatusConverti
		return s.quoteRepo.Save(txCtx, quote)
	})
	if err != nil {
		return WorkOrderResponse{}, err
	}

	s.audit.Record(ctx, authctx.UserID(ctx), model.ActionConvertDevis, order.ID.String(), order.Numero,
		map[string]string{"source_devis": quoteNumero})
	s.notifier.DocumentCreated(model.DocTypeOrdre, order.Numero)

	reloaded, err := s.orderRepo.FindByIDWithRelations(ctx, order.ID)
	if err != nil {
		return WorkOrderResponse{}, err
	}
	return toWorkOrderResponse(reloaded), nil
}

func toQuoteResponse(quote *model.Quote) QuoteResponse {
	res := QuoteResponse{
		ID:         quote.ID.String(),
		Numero:     quote.Numero,
		ClientID:   quote.ClientID.String(),
		Categorie:  quote.Categorie,
		Statut:     quote.Statut,
		MontantHT:  quote.MontantHT.StringFixed(2),
		MontantTVA: quote.MontantTVA.StringFixed(2),
		MontantCSS: quote.MontantCSS.StringFixed(2),
		MontantTTC: quote.MontantTTC.StringFixed(2),
		ExonereTVA: quote.ExonereTVA,
		ExonereCSS: quote.ExonereCSS,
		Notes:      quote.Notes,
		LineItems:  quote.LineItems,
		Containers: quote.Containers,
		Lots:       quote.Lots,
		CreatedAt:  quote.CreatedAt.Format(time.RFC3339),
	}
	if quote.Client != nil {
		res.ClientNom = quote.Client.Nom
	}
	return res
}
