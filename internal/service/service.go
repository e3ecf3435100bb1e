package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuspulse/events-server/internal/auth"
	"github.com/campuspulse/events-server/internal/config"
	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error)
	ResolveAccount(ctx context.Context, email string) (*models.Account, error)
	Profile(account *models.Account) *models.AccountView

	// Event catalog
	CreateEvent(ctx context.Context, account *models.Account, req models.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	QueryEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error)
	UpdateEvent(ctx context.Context, account *models.Account, id int64, req models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, account *models.Account, id int64) error

	// Favorites
	FavoriteEvent(ctx context.Context, account *models.Account, eventID int64) error
	UnfavoriteEvent(ctx context.Context, account *models.Account, eventID int64) error
	ListFavorites(ctx context.Context, account *models.Account) ([]models.Event, error)

	// Administration
	ListAccounts(ctx context.Context, hostOnly bool) ([]models.AccountView, error)
	ApproveHost(ctx context.Context, accountID int64) (*models.AccountView, error)
	RevokeHost(ctx context.Context, accountID int64) (*models.AccountView, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo     repository.Repository
	tokens   *auth.TokenManager
	hasher   auth.PasswordHasher
	verifier auth.IDTokenVerifier
	policy   config.PolicyConfig
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	repo repository.Repository,
	tokens *auth.TokenManager,
	hasher auth.PasswordHasher,
	verifier auth.IDTokenVerifier,
	policy config.PolicyConfig,
) Service {
	return &DefaultService{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		policy:   policy,
	}
}

// storeErr normalizes repository failures to the Unavailable outcome.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *DefaultService) view(account *models.Account) *models.AccountView {
	return &models.AccountView{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		IsHost:    account.IsHost,
		IsAdmin:   IsAdmin(account.Email, s.policy.AdminEmails),
		CreatedAt: account.CreatedAt,
	}
}

func (s *DefaultService) authResponse(account *models.Account) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		Account:   s.view(account),
	}, nil
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	if !EmailInDomain(req.Email, s.policy.EmailDomain) {
		return nil, ErrUnauthenticated
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	// Self-registered accounts never start out as hosts; an admin has to
	// approve them.
	account := &models.Account{
		Email:    req.Email,
		Name:     req.Name,
		Password: digest,
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err)
	}

	return s.authResponse(account)
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	account, err := s.repo.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr(err)
	}

	if account == nil || !s.hasher.Verify(req.Password, account.Password) {
		return nil, ErrUnauthenticated
	}

	return s.authResponse(account)
}

func (s *DefaultService) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error) {
	email, name, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if !EmailInDomain(email, s.policy.EmailDomain) {
		return nil, ErrUnauthenticated
	}

	account, err := s.repo.GetOrCreateAccount(ctx, email, name, s.policy.SignupDefaultHost)
	if err != nil {
		return nil, storeErr(err)
	}

	return s.authResponse(account)
}

// ResolveAccount looks up the account behind a verified principal email.
// Returns ErrUnauthenticated when no such account exists.
func (s *DefaultService) ResolveAccount(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, ErrUnauthenticated
	}
	return account, nil
}

// Profile renders the caller's account view with the derived admin flag.
func (s *DefaultService) Profile(account *models.Account) *models.AccountView {
	return s.view(account)
}

// Administration methods
func (s *DefaultService) ListAccounts(ctx context.Context, hostOnly bool) ([]models.AccountView, error) {
	accounts, err := s.repo.ListAccounts(ctx, hostOnly)
	if err != nil {
		return nil, storeErr(err)
	}

	views := make([]models.AccountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, *s.view(&accounts[i]))
	}
	return views, nil
}

func (s *DefaultService) ApproveHost(ctx context.Context, accountID int64) (*models.AccountView, error) {
	return s.setHost(ctx, accountID, true, "already a host")
}

func (s *DefaultService) RevokeHost(ctx context.Context, accountID int64) (*models.AccountView, error) {
	return s.setHost(ctx, accountID, false, "not a host")
}

func (s *DefaultService) setHost(ctx context.Context, accountID int64, desired bool, conflictMsg string) (*models.AccountView, error) {
	account, err := s.repo.SetHost(ctx, accountID, desired)
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, fmt.Errorf("%w: %s", ErrStateConflict, conflictMsg)
		}
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return s.view(account), nil
}
