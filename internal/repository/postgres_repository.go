package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/utils"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// likeEscaper neutralizes the ILIKE metacharacters so user search text
// always matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// Account repository methods
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, name, password, is_host, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if account.ID == 0 {
		account.ID = utils.NextID()
	}
	account.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.Name, account.Password, account.IsHost, account.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}

	return err
}

func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT * FROM accounts WHERE email = $1`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Account not found
		}
		return nil, err
	}

	return &account, nil
}

func (r *PostgresRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Account not found
		}
		return nil, err
	}

	return &account, nil
}

func (r *PostgresRepository) GetOrCreateAccount(ctx context.Context, email, name string, isHost bool) (*models.Account, error) {
	existing, err := r.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	account := &models.Account{
		Email:  email,
		Name:   name,
		IsHost: isHost,
	}

	err = r.CreateAccount(ctx, account)
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost the race against a concurrent first resolution of the same
		// email; fetch the winning row once.
		return r.GetAccountByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *PostgresRepository) SetHost(ctx context.Context, id int64, desired bool) (*models.Account, error) {
	// Guard and write in a single statement so the state check cannot race
	// a concurrent transition.
	query := `
		UPDATE accounts SET is_host = $2
		WHERE id = $1 AND is_host = $3
		RETURNING id, email, name, password, is_host, created_at
	`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, id, desired, !desired)
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// No row matched: either the account is absent or already in the
	// desired state.
	existing, err := r.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return nil, ErrStateConflict
}

func (r *PostgresRepository) ListAccounts(ctx context.Context, hostOnly bool) ([]models.Account, error) {
	query := `SELECT * FROM accounts`
	if hostOnly {
		query += ` WHERE is_host`
	}
	query += ` ORDER BY created_at ASC`

	var accounts []models.Account
	err := r.db.SelectContext(ctx, &accounts, query)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// Event repository methods
func (r *PostgresRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, starts_at, ends_at, location, description, host_label, tags, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if event.ID == 0 {
		event.ID = utils.NextID()
	}
	event.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.StartsAt, event.EndsAt, event.Location,
		event.Description, event.HostLabel, event.Tags, event.OwnerID, event.CreatedAt)

	return err
}

func (r *PostgresRepository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT * FROM events WHERE id = $1`

	var event models.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Event not found
		}
		return nil, err
	}

	return &event, nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, id int64, apply func(event *models.Event) error) (*models.Event, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Row lock held across the read-modify-write so a concurrent update
	// cannot slip in between and get overwritten.
	var event models.Event
	err = tx.GetContext(ctx, &event, `SELECT * FROM events WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := apply(&event); err != nil {
		return nil, err
	}

	query := `
		UPDATE events
		SET name = $2, starts_at = $3, ends_at = $4, location = $5,
		    description = $6, host_label = $7, tags = $8
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query,
		event.ID, event.Name, event.StartsAt, event.EndsAt, event.Location,
		event.Description, event.HostLabel, event.Tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Purge favorites first so no ledger row outlives its event
	_, err = tx.ExecContext(ctx, `DELETE FROM favorites WHERE event_id = $1`, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) QueryEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	query := `SELECT * FROM events WHERE TRUE`
	args := []interface{}{}

	if q.Text != "" {
		pattern := "%" + likeEscaper.Replace(q.Text) + "%"
		args = append(args, pattern)
		n := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)`, n, n, n)
	}

	if q.Tag != "" {
		args = append(args, q.Tag)
		query += fmt.Sprintf(
			` AND EXISTS (SELECT 1 FROM unnest(string_to_array(tags, ',')) AS t WHERE lower(btrim(t)) = lower($%d))`,
			len(args))
	}

	if q.StartFrom != nil {
		args = append(args, *q.StartFrom)
		query += fmt.Sprintf(` AND starts_at >= $%d`, len(args))
	}

	if q.StartTo != nil {
		args = append(args, *q.StartTo)
		query += fmt.Sprintf(` AND starts_at <= $%d`, len(args))
	}

	if !q.IncludePast {
		query += ` AND COALESCE(ends_at, starts_at) >= NOW()`
	}

	// Filter and sort before the limit is applied
	args = append(args, q.Limit)
	query += fmt.Sprintf(` ORDER BY starts_at ASC LIMIT $%d`, len(args))

	var events []models.Event
	err := r.db.SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Favorite repository methods
func (r *PostgresRepository) AddFavorite(ctx context.Context, accountID, eventID int64) error {
	query := `
		INSERT INTO favorites (account_id, event_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, event_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, accountID, eventID, time.Now().UTC())

	// A concurrent delete of the event surfaces as a foreign key
	// violation rather than a server fault.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return ErrEventMissing
	}

	return err
}

func (r *PostgresRepository) RemoveFavorite(ctx context.Context, accountID, eventID int64) error {
	query := `DELETE FROM favorites WHERE account_id = $1 AND event_id = $2`

	_, err := r.db.ExecContext(ctx, query, accountID, eventID)
	return err
}

func (r *PostgresRepository) ListFavoriteEvents(ctx context.Context, accountID int64) ([]models.Event, error) {
	query := `
		SELECT e.* FROM events e
		JOIN favorites f ON e.id = f.event_id
		WHERE f.account_id = $1
		ORDER BY e.starts_at DESC
	`

	var events []models.Event
	err := r.db.SelectContext(ctx, &events, query, accountID)
	if err != nil {
		return nil, err
	}

	return events, nil
}
