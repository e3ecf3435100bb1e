package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/events-server/internal/models"
)

func TestGetOrCreateAccount(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, err := repo.GetOrCreateAccount(ctx, "a@inst.edu", "Alice", true)
	require.NoError(t, err)
	assert.True(t, first.IsHost)

	// Resolving the same email again returns the existing row; the host
	// default only applies on creation
	second, err := repo.GetOrCreateAccount(ctx, "a@inst.edu", "Other Name", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice", second.Name)
	assert.True(t, second.IsHost)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, &models.Account{Email: "a@inst.edu", Name: "Alice"}))
	err := repo.CreateAccount(ctx, &models.Account{Email: "a@inst.edu", Name: "Clone"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSetHostGuard(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	account := &models.Account{Email: "a@inst.edu", Name: "Alice"}
	require.NoError(t, repo.CreateAccount(ctx, account))

	// Missing account resolves to nil, nil so callers can report NotFound
	missing, err := repo.SetHost(ctx, account.ID+1, true)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.SetHost(ctx, account.ID, false)
	assert.ErrorIs(t, err, ErrStateConflict)

	updated, err := repo.SetHost(ctx, account.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsHost)

	_, err = repo.SetHost(ctx, account.ID, true)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestUpdateEventApply(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	event := &models.Event{Name: "Talk", StartsAt: time.Now().Add(time.Hour), Location: "Hall"}
	require.NoError(t, repo.CreateEvent(ctx, event))

	// The mutation is applied and persisted in one step
	updated, err := repo.UpdateEvent(ctx, event.ID, func(e *models.Event) error {
		e.Location = "Annex"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Annex", updated.Location)

	// An error from apply aborts the write and passes through unchanged
	reject := errors.New("rejected")
	_, err = repo.UpdateEvent(ctx, event.ID, func(e *models.Event) error {
		e.Location = "Basement"
		return reject
	})
	assert.ErrorIs(t, err, reject)

	stored, err := repo.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annex", stored.Location)

	// A missing id resolves to nil, nil without invoking apply
	called := false
	missing, err := repo.UpdateEvent(ctx, event.ID+1, func(e *models.Event) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, called)
}

func TestAddFavoriteMissingEvent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	event := &models.Event{Name: "Talk", StartsAt: time.Now().Add(time.Hour), Location: "Hall"}
	require.NoError(t, repo.CreateEvent(ctx, event))
	require.NoError(t, repo.AddFavorite(ctx, 1, event.ID))

	// Favoriting after the event is gone cannot leave an orphan row
	require.NoError(t, repo.DeleteEvent(ctx, event.ID))
	err := repo.AddFavorite(ctx, 1, event.ID)
	assert.ErrorIs(t, err, ErrEventMissing)
	assert.Empty(t, repo.favorites)
}
