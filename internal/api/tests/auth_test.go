package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuspulse/events-server/internal/api/testutils"
	"github.com/campuspulse/events-server/internal/models"
)

func TestSignup(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful signup
	signupReq := models.SignUpRequest{
		Email:    "newuser@inst.edu",
		Password: "Password123",
		Name:     "New User",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signupReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.AuthResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "newuser@inst.edu", resp.Account.Email)
	assert.False(t, resp.Account.IsHost, "self-registered accounts never start as hosts")

	// Test case 2: Duplicate email
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signupReq,
		nil,
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Email outside the institutional domain
	outsideReq := models.SignUpRequest{
		Email:    "someone@gmail.com",
		Password: "Password123",
		Name:     "Outsider",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		outsideReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 4: Invalid request (missing required fields)
	invalidReq := models.SignUpRequest{
		Email: "invalid@inst.edu",
		// Missing password and name
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		invalidReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	testutils.CreateAccount(t, testCtx, "testuser@inst.edu", "Test User", false)

	// Test case 1: Successful login
	loginReq := models.LoginRequest{
		Email:    "testuser@inst.edu",
		Password: testutils.TestPassword,
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		loginReq,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Token)

	// Test case 2: Invalid credentials
	invalidLoginReq := models.LoginRequest{
		Email:    "testuser@inst.edu",
		Password: "wrongpassword",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		invalidLoginReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: User not found
	nonExistentUserReq := models.LoginRequest{
		Email:    "nonexistent@inst.edu",
		Password: testutils.TestPassword,
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		nonExistentUserReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: First login creates the account
	testCtx.Verifier.Email = "google-user@inst.edu"
	testCtx.Verifier.Name = "Google User"

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/google",
		models.GoogleLoginRequest{IDToken: "stub-token"},
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, "google-user@inst.edu", resp.Account.Email)
	assert.False(t, resp.Account.IsHost)

	firstID := resp.Account.ID

	// Test case 2: Second login resolves the same account
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/google",
		models.GoogleLoginRequest{IDToken: "stub-token"},
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &resp)
	assert.Equal(t, firstID, resp.Account.ID)

	// Test case 3: Verified email outside the domain is rejected
	testCtx.Verifier.Email = "google-user@gmail.com"

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/google",
		models.GoogleLoginRequest{IDToken: "stub-token"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 4: Provider failure surfaces as unauthenticated
	testCtx.Verifier.Err = errors.New("provider unreachable")

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/google",
		models.GoogleLoginRequest{IDToken: "stub-token"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleLoginHostDefault(t *testing.T) {
	// Deployments may grant host privileges to Google-created accounts
	policy := testutils.DefaultPolicy()
	policy.SignupDefaultHost = true
	testCtx := testutils.SetupTestContextWithPolicy(t, policy)

	testCtx.Verifier.Email = "host-by-default@inst.edu"
	testCtx.Verifier.Name = "Host By Default"

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/google",
		models.GoogleLoginRequest{IDToken: "stub-token"},
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.True(t, resp.Account.IsHost)
}

func TestProfile(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	_, token := testutils.CreateAccount(t, testCtx, "me@inst.edu", "Me", true)

	// Profile requires authentication
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me", nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusOK, w.Code)

	var view models.AccountView
	testutils.DecodeJSON(t, w, &view)
	assert.Equal(t, "me@inst.edu", view.Email)
	assert.True(t, view.IsHost)
	assert.False(t, view.IsAdmin)

	// The admin flag is derived from the allow-list, never stored
	_, adminToken := testutils.CreateAdmin(t, testCtx)
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me", nil, testutils.AuthHeaders(adminToken))
	assert.Equal(t, http.StatusOK, w.Code)

	testutils.DecodeJSON(t, w, &view)
	assert.True(t, view.IsAdmin)
}

func TestMalformedToken(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	for _, header := range []map[string]string{
		{"Authorization": "Bearer not-a-token"},
		{"Authorization": "Basic abc"},
		testutils.AuthHeaders(""),
	} {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/me", nil, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
