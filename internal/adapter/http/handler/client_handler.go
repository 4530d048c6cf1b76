package handler

import (
	"context"
	"net/http"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// ClientService defines client analytics and relationship operations.
type ClientService interface {
	ListClients(ctx context.Context) ([]*domain.ClientSummary, error)
	ListConnections(ctx context.Context) ([]*domain.ClientConnection, error)
	UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) error
	AddConnection(ctx context.Context, input usecase.AddConnectionInput) error
}

// ClientHandler handles client HTTP requests.
type ClientHandler struct {
	clients ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List returns per-client purchase aggregates.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list clients", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientsFromDomain(clients))
}

// UpdateProfile sets importance and comments of a client.
func (h *ClientHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateClientProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.clients.UpdateProfile(r.Context(), req.ToUseCaseInput()); err != nil {
		writeDomainError(w, r, "failed to update client profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// ListConnections returns links between clients.
func (h *ClientHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.clients.ListConnections(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list connections", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConnectionsFromDomain(conns))
}

// AddConnection links two clients.
func (h *ClientHandler) AddConnection(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConnectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.clients.AddConnection(r.Context(), req.ToUseCaseInput()); err != nil {
		writeDomainError(w, r, "failed to add connection", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Success: true})
}
