package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/domain"
)

// ClientUseCase handles client analytics, profiles and connections.
type ClientUseCase struct {
	txManager  TransactionManager
	clientRepo ClientRepository
	retrier    Retrier
	idGen      IDGenerator
	now        Clock
}

// NewClientUseCase creates a new ClientUseCase.
func NewClientUseCase(txManager TransactionManager, clientRepo ClientRepository, retrier Retrier, idGen IDGenerator) *ClientUseCase {
	return &ClientUseCase{
		txManager:  txManager,
		clientRepo: clientRepo,
		retrier:    retrier,
		idGen:      idGen,
		now:        time.Now,
	}
}

// ListClients returns per-client purchase aggregates ordered by revenue.
func (uc *ClientUseCase) ListClients(ctx context.Context) ([]*domain.ClientSummary, error) {
	return uc.clientRepo.ListSummaries(ctx)
}

// ListConnections returns client connections, newest first.
func (uc *ClientUseCase) ListConnections(ctx context.Context) ([]*domain.ClientConnection, error) {
	return uc.clientRepo.ListConnections(ctx)
}

// UpdateProfileInput represents a client profile update. ClientID selects an
// existing profile; without it the profile is keyed by ClientTelegram.
type UpdateProfileInput struct {
	ClientID       string
	ClientTelegram string
	Importance     string
	Comments       string
}

// UpdateProfile sets importance and comments of a client.
func (uc *ClientUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	importance := domain.Importance(strings.TrimSpace(input.Importance))
	if importance == "" {
		importance = domain.ImportanceMedium
	}
	if !importance.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidImportance, input.Importance)
	}

	now := uc.now().UTC()

	if input.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, input.ClientID)
		if err != nil {
			return err
		}
		client.Importance = importance
		client.Comments = input.Comments
		client.UpdatedAt = now
		return uc.clientRepo.Update(ctx, client)
	}

	telegram := strings.TrimSpace(input.ClientTelegram)
	if telegram == "" {
		return fmt.Errorf("%w: client_id or client_telegram is required", domain.ErrInvalidInput)
	}

	return uc.clientRepo.UpsertFromTransactions(ctx, &domain.Client{
		ID:             uc.idGen.Generate(),
		ClientTelegram: telegram,
		Importance:     importance,
		Comments:       input.Comments,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// AddConnectionInput represents a new link between two clients.
type AddConnectionInput struct {
	ClientTelegramFrom string
	ClientTelegramTo   string
	ConnectionType     string
	Description        string
}

// AddConnection links two clients, creating missing profiles first. Adding
// an existing pair again is a no-op.
func (uc *ClientUseCase) AddConnection(ctx context.Context, input AddConnectionInput) error {
	from := strings.TrimSpace(input.ClientTelegramFrom)
	to := strings.TrimSpace(input.ClientTelegramTo)
	if from == "" || to == "" {
		return fmt.Errorf("%w: client_telegram_from and client_telegram_to are required", domain.ErrInvalidInput)
	}
	if from == to {
		return fmt.Errorf("%w: a client cannot be connected to itself", domain.ErrInvalidInput)
	}

	return uc.retrier.Retry(ctx, func() error {
		return uc.addConnection(ctx, from, to, input)
	})
}

func (uc *ClientUseCase) addConnection(ctx context.Context, from, to string, input AddConnectionInput) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(txCtx)

	fromID, err := uc.clientRepo.EnsureTx(txCtx, tx, uc.idGen.Generate(), from)
	if err != nil {
		return err
	}

	toID, err := uc.clientRepo.EnsureTx(txCtx, tx, uc.idGen.Generate(), to)
	if err != nil {
		return err
	}

	conn := &domain.ClientConnection{
		ID:                 uc.idGen.Generate(),
		ClientIDFrom:       fromID,
		ClientIDTo:         toID,
		ClientTelegramFrom: from,
		ClientTelegramTo:   to,
		ConnectionType:     strings.TrimSpace(input.ConnectionType),
		Description:        input.Description,
		CreatedAt:          uc.now().UTC(),
	}

	if err := uc.clientRepo.CreateConnectionTx(txCtx, tx, conn); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("from", from).Str("to", to).Msg("client connection added")
	return nil
}
