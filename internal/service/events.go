package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/repository"
)

const (
	maxNameLen        = 120
	maxLocationLen    = 160
	maxDescriptionLen = 10000
	maxHostLabelLen   = 300

	minSearchLen = 3
	maxLimit     = 500
	defaultLimit = 50
)

// validateEventTimes re-checks the ordering invariant; callers pass the
// merged state on updates, never just the changed field.
func validateEventTimes(startsAt time.Time, endsAt *time.Time) error {
	if startsAt.IsZero() {
		return fmt.Errorf("%w: startsAt is required", ErrValidation)
	}
	if endsAt != nil && !endsAt.After(startsAt) {
		return fmt.Errorf("%w: endsAt must be after startsAt", ErrValidation)
	}
	return nil
}

func validateEventFields(event *models.Event) error {
	if l := utf8.RuneCountInString(event.Name); l < 1 || l > maxNameLen {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrValidation, maxNameLen)
	}
	if l := utf8.RuneCountInString(event.Location); l < 1 || l > maxLocationLen {
		return fmt.Errorf("%w: location must be 1-%d characters", ErrValidation, maxLocationLen)
	}
	if utf8.RuneCountInString(event.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionLen)
	}
	if utf8.RuneCountInString(event.HostLabel) > maxHostLabelLen {
		return fmt.Errorf("%w: host label exceeds %d characters", ErrValidation, maxHostLabelLen)
	}
	return validateEventTimes(event.StartsAt, event.EndsAt)
}

// Event catalog methods
func (s *DefaultService) CreateEvent(ctx context.Context, account *models.Account, req models.CreateEventRequest) (*models.Event, error) {
	if !CanCreateEvent(account) {
		return nil, fmt.Errorf("%w: host privileges required", ErrForbidden)
	}

	ownerID := account.ID
	event := &models.Event{
		Name:        req.Name,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		Description: req.Description,
		HostLabel:   req.Host,
		Tags:        req.Tags,
		OwnerID:     &ownerID,
	}

	if err := validateEventFields(event); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, storeErr(err)
	}

	return event, nil
}

func (s *DefaultService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}

func (s *DefaultService) QueryEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	if q.Text != "" && utf8.RuneCountInString(q.Text) < minSearchLen {
		return nil, fmt.Errorf("%w: search term must be at least %d characters", ErrValidation, minSearchLen)
	}

	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.Limit < 1 || q.Limit > maxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, maxLimit)
	}

	events, err := s.repo.QueryEvents(ctx, q)
	if err != nil {
		return nil, storeErr(err)
	}
	return events, nil
}

func (s *DefaultService) UpdateEvent(ctx context.Context, account *models.Account, id int64, req models.UpdateEventRequest) (*models.Event, error) {
	if req.ClearEndsAt && req.EndsAt != nil {
		return nil, fmt.Errorf("%w: endsAt and clearEndsAt are mutually exclusive", ErrValidation)
	}

	// The ownership check, merge and validation all run inside the
	// repository write, so two concurrent updates apply serially against
	// the committed state instead of overwriting each other.
	event, err := s.repo.UpdateEvent(ctx, id, func(event *models.Event) error {
		if !CanModifyEvent(account, event) {
			return fmt.Errorf("%w: not the event owner", ErrForbidden)
		}

		// Merge the supplied fields onto the stored record; absent fields
		// stay untouched.
		if req.Name != nil {
			event.Name = *req.Name
		}
		if req.StartsAt != nil {
			event.StartsAt = *req.StartsAt
		}
		if req.ClearEndsAt {
			event.EndsAt = nil
		} else if req.EndsAt != nil {
			event.EndsAt = req.EndsAt
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		if req.Description != nil {
			event.Description = *req.Description
		}
		if req.Host != nil {
			event.HostLabel = *req.Host
		}
		if req.Tags != nil {
			event.Tags = *req.Tags
		}

		// Validate the merged result before committing
		return validateEventFields(event)
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	if event == nil {
		return nil, ErrNotFound
	}

	return event, nil
}

func (s *DefaultService) DeleteEvent(ctx context.Context, account *models.Account, id int64) error {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if event == nil {
		return ErrNotFound
	}

	if !CanDeleteEvent(account, event) {
		return fmt.Errorf("%w: not the event owner", ErrForbidden)
	}

	// Deleting the event also purges its favorites rows in the same
	// transaction.
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return storeErr(err)
	}

	return nil
}

// Favorites methods
func (s *DefaultService) FavoriteEvent(ctx context.Context, account *models.Account, eventID int64) error {
	// Idempotent: repeat adds are a no-op. The store checks event
	// existence in the same operation as the insert, so an event deleted
	// concurrently cannot leave an orphan row.
	err := s.repo.AddFavorite(ctx, account.ID, eventID)
	if errors.Is(err, repository.ErrEventMissing) {
		return ErrNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *DefaultService) UnfavoriteEvent(ctx context.Context, account *models.Account, eventID int64) error {
	// Idempotent: removing an absent pair is a no-op
	if err := s.repo.RemoveFavorite(ctx, account.ID, eventID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *DefaultService) ListFavorites(ctx context.Context, account *models.Account) ([]models.Event, error) {
	events, err := s.repo.ListFavoriteEvents(ctx, account.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return events, nil
}
