package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/utils"
)

type favoriteKey struct {
	accountID int64
	eventID   int64
}

// MemoryRepository is an in-memory Repository used by tests. It mirrors the
// query semantics of the Postgres implementation.
type MemoryRepository struct {
	mu        sync.RWMutex
	accounts  map[int64]models.Account
	byEmail   map[string]int64
	events    map[int64]models.Event
	favorites map[favoriteKey]models.Favorite
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts:  make(map[int64]models.Account),
		byEmail:   make(map[string]int64),
		events:    make(map[int64]models.Event),
		favorites: make(map[favoriteKey]models.Favorite),
	}
}

// Account repository methods
func (r *MemoryRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createAccountLocked(account)
}

func (r *MemoryRepository) createAccountLocked(account *models.Account) error {
	if _, taken := r.byEmail[account.Email]; taken {
		return ErrDuplicateEmail
	}
	if account.ID == 0 {
		account.ID = utils.NextID()
	}
	account.CreatedAt = time.Now().UTC()
	r.accounts[account.ID] = *account
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *MemoryRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	account := r.accounts[id]
	return &account, nil
}

func (r *MemoryRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (r *MemoryRepository) GetOrCreateAccount(ctx context.Context, email, name string, isHost bool) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byEmail[email]; ok {
		account := r.accounts[id]
		return &account, nil
	}

	account := &models.Account{
		Email:  email,
		Name:   name,
		IsHost: isHost,
	}
	if err := r.createAccountLocked(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *MemoryRepository) SetHost(ctx context.Context, id int64, desired bool) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	if account.IsHost == desired {
		return nil, ErrStateConflict
	}
	account.IsHost = desired
	r.accounts[id] = account
	return &account, nil
}

func (r *MemoryRepository) ListAccounts(ctx context.Context, hostOnly bool) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]models.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if hostOnly && !account.IsHost {
			continue
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// Event repository methods
func (r *MemoryRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == 0 {
		event.ID = utils.NextID()
	}
	event.CreatedAt = time.Now().UTC()
	r.events[event.ID] = *event
	return nil
}

func (r *MemoryRepository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (r *MemoryRepository) UpdateEvent(ctx context.Context, id int64, apply func(event *models.Event) error) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	if err := apply(&event); err != nil {
		return nil, err
	}
	r.events[id] = event
	return &event, nil
}

func (r *MemoryRepository) DeleteEvent(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, id)
	for key := range r.favorites {
		if key.eventID == id {
			delete(r.favorites, key)
		}
	}
	return nil
}

func (r *MemoryRepository) QueryEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	results := make([]models.Event, 0)

	for _, event := range r.events {
		if q.Text != "" && !matchesText(&event, q.Text) {
			continue
		}
		if q.Tag != "" && !matchesTag(&event, q.Tag) {
			continue
		}
		if q.StartFrom != nil && event.StartsAt.Before(*q.StartFrom) {
			continue
		}
		if q.StartTo != nil && event.StartsAt.After(*q.StartTo) {
			continue
		}
		if !q.IncludePast && event.ConcludedBefore(now) {
			continue
		}
		results = append(results, event)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartsAt.Before(results[j].StartsAt)
	})

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func matchesText(event *models.Event, text string) bool {
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(event.Name), needle) ||
		strings.Contains(strings.ToLower(event.Description), needle) ||
		strings.Contains(strings.ToLower(event.Location), needle)
}

func matchesTag(event *models.Event, tag string) bool {
	for _, t := range event.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Favorite repository methods
func (r *MemoryRepository) AddFavorite(ctx context.Context, accountID, eventID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; !ok {
		return ErrEventMissing
	}

	key := favoriteKey{accountID: accountID, eventID: eventID}
	if _, ok := r.favorites[key]; !ok {
		r.favorites[key] = models.Favorite{
			AccountID: accountID,
			EventID:   eventID,
			CreatedAt: time.Now().UTC(),
		}
	}
	return nil
}

func (r *MemoryRepository) RemoveFavorite(ctx context.Context, accountID, eventID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.favorites, favoriteKey{accountID: accountID, eventID: eventID})
	return nil
}

func (r *MemoryRepository) ListFavoriteEvents(ctx context.Context, accountID int64) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]models.Event, 0)
	for key := range r.favorites {
		if key.accountID != accountID {
			continue
		}
		if event, ok := r.events[key.eventID]; ok {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.After(events[j].StartsAt)
	})
	return events, nil
}
