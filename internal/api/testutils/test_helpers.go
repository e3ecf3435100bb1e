package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuspulse/events-server/internal/api"
	"github.com/campuspulse/events-server/internal/auth"
	"github.com/campuspulse/events-server/internal/config"
	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/repository"
	"github.com/campuspulse/events-server/internal/service"
)

// TestPassword is the password every fixture account is created with.
const TestPassword = "testpassword"

// StubVerifier is a canned IDTokenVerifier for tests.
type StubVerifier struct {
	Email string
	Name  string
	Err   error
}

func (v *StubVerifier) Verify(ctx context.Context, rawToken string) (string, string, error) {
	if v.Err != nil {
		return "", "", v.Err
	}
	return v.Email, v.Name, nil
}

// TestContext holds all dependencies for tests
type TestContext struct {
	Router   *gin.Engine
	Repo     repository.Repository
	Service  service.Service
	Tokens   *auth.TokenManager
	Verifier *StubVerifier
	Hasher   auth.PasswordHasher
	Policy   config.PolicyConfig
}

// DefaultPolicy is the deployment policy the test router runs under.
func DefaultPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		EmailDomain:       "inst.edu",
		AdminEmails:       []string{"admin@inst.edu"},
		SignupDefaultHost: false,
	}
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	return SetupTestContextWithPolicy(t, DefaultPolicy())
}

// SetupTestContextWithPolicy creates a test context under a specific policy
func SetupTestContextWithPolicy(t *testing.T, policy config.PolicyConfig) *TestContext {
	t.Helper()
	return SetupTestContextWithRepo(t, policy, repository.NewMemoryRepository())
}

// SetupTestContextWithRepo builds the router around a caller-supplied
// repository, for tests that need to wrap or break the store.
func SetupTestContextWithRepo(t *testing.T, policy config.PolicyConfig, repo repository.Repository) *TestContext {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret-key", 24*time.Hour)
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	verifier := &StubVerifier{}

	svc := service.NewDefaultService(repo, tokens, hasher, verifier, policy)
	handler := api.NewHandler(svc, tokens, policy, zap.NewNop())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.SetupRoutes(router)

	return &TestContext{
		Router:   router,
		Repo:     repo,
		Service:  svc,
		Tokens:   tokens,
		Verifier: verifier,
		Hasher:   hasher,
		Policy:   policy,
	}
}

// CreateAccount inserts a fixture account and returns it with a valid token.
func CreateAccount(t *testing.T, tc *TestContext, email, name string, isHost bool) (*models.Account, string) {
	t.Helper()

	digest, err := tc.Hasher.Hash(TestPassword)
	require.NoError(t, err)

	account := &models.Account{
		Email:    email,
		Name:     name,
		Password: digest,
		IsHost:   isHost,
	}
	require.NoError(t, tc.Repo.CreateAccount(context.Background(), account))

	token, err := tc.Tokens.Issue(account.Email)
	require.NoError(t, err)

	return account, token
}

// CreateAdmin inserts the allow-listed admin account and returns its token.
func CreateAdmin(t *testing.T, tc *TestContext) (*models.Account, string) {
	t.Helper()
	return CreateAccount(t, tc, "admin@inst.edu", "Admin", false)
}

// CreateEvent inserts a fixture event owned by the given account.
func CreateEvent(t *testing.T, tc *TestContext, owner *models.Account, name string, startsAt time.Time, endsAt *time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		Name:     name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Location: "Hall",
	}
	if owner != nil {
		ownerID := owner.ID
		event.OwnerID = &ownerID
	}
	require.NoError(t, tc.Repo.CreateEvent(context.Background(), event))
	return event
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a recorded response body into out.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
