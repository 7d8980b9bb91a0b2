package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateClientRequest struct {
	Nom       string `json:"nom" binding:"required"`
	Telephone string `json:"telephone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Adresse   string `json:"adresse"`
	Categorie string `json:"categorie"`
}

type UpdateClientRequest struct {
	Nom       *string `json:"nom"`
	Telephone *string `json:"telephone"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Adresse   *string `json:"adresse"`
	Categorie *string `json:"categorie"`
}

type ClientResponse struct {
	ID        string `json:"id"`
	Nom       string `json:"nom"`
	Telephone string `json:"telephone,omitempty"`
	Email     string `json:"email,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	Categorie string `json:"categorie"`
	Solde     string `json:"solde"`
	CreatedAt string `json:"created_at"`
}

// ClientService manages the customer registry. The solde field is read-only
// here: it is maintained by the balance recompute that follows every invoice
// and payment mutation.
type ClientService interface {
	Create(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	Get(ctx context.Context, id string) (ClientResponse, error)
	List(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
	Delete(ctx context.Context, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	categorie := req.Categorie
	if categorie == "" {
		categorie = model.CategorieStandard
	}

	client := &model.Client{
		Nom:       req.Nom,
		Telephone: req.Telephone,
		Email:     req.Email,
		Adresse:   req.Adresse,
		Categorie: categorie,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) Get(ctx context.Context, id string) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", err)
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, ErrClientNotFound
		}
		return ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) List(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	page, limit = pagination.Clamp(page, limit)

	clients, total, err := s.clientRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		res = append(res, toClientResponse(&clients[i]))
	}
	return res, total, nil
}

func (s *clientService) Update(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", err)
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, ErrClientNotFound
		}
		return ClientResponse{}, err
	}

	if req.Nom != nil {
		client.Nom = *req.Nom
	}
	if req.Telephone != nil {
		client.Telephone = *req.Telephone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Adresse != nil {
		client.Adresse = *req.Adresse
	}
	if req.Categorie != nil {
		client.Categorie = *req.Categorie
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to save client: %w", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return s.clientRepo.Delete(ctx, clientID)
}

func toClientResponse(client *model.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID.String(),
		Nom:       client.Nom,
		Telephone: client.Telephone,
		Email:     client.Email,
		Adresse:   client.Adresse,
		Categorie: client.Categorie,
		Solde:     client.Solde.StringFixed(2),
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
	}
}
