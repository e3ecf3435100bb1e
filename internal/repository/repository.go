package repository

import (
	"context"
	"errors"

	"github.com/campuspulse/events-server/internal/models"
)

var (
	// ErrDuplicateEmail is returned when an account insert hits the email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrStateConflict is returned when a guarded transition (host
	// approve/revoke) finds the row in the wrong state.
	ErrStateConflict = errors.New("state conflict")
	// ErrEventMissing is returned when a favorite insert references an
	// event that no longer exists.
	ErrEventMissing = errors.New("event does not exist")
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	// GetOrCreateAccount resolves an email to an account, creating one
	// atomically on first sight. isHost only applies to a newly created row.
	GetOrCreateAccount(ctx context.Context, email, name string, isHost bool) (*models.Account, error)
	// SetHost flips the host flag, guarded against the current state:
	// approving a host or revoking a non-host returns ErrStateConflict.
	SetHost(ctx context.Context, id int64, desired bool) (*models.Account, error)
	ListAccounts(ctx context.Context, hostOnly bool) ([]models.Account, error)

	// Event operations
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	// UpdateEvent loads the event, passes it to apply and writes the
	// mutated row back, all within a single transaction so concurrent
	// updates cannot interleave between read and commit. A nil event
	// means the id is absent; an error from apply aborts the write and is
	// returned unchanged.
	UpdateEvent(ctx context.Context, id int64, apply func(event *models.Event) error) (*models.Event, error)
	// DeleteEvent removes the event and all favorites referencing it in one
	// transaction.
	DeleteEvent(ctx context.Context, id int64) error
	QueryEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error)

	// Favorite operations

	// AddFavorite records the pair, checking that the event still exists
	// in the same operation; a missing event yields ErrEventMissing.
	// Repeat adds are a no-op.
	AddFavorite(ctx context.Context, accountID, eventID int64) error
	RemoveFavorite(ctx context.Context, accountID, eventID int64) error
	ListFavoriteEvents(ctx context.Context, accountID int64) ([]models.Event, error)
}
