package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/events-server/internal/api/testutils"
	"github.com/campuspulse/events-server/internal/models"
)

func TestAdminGate(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	_, userToken := testutils.CreateAccount(t, testCtx, "user@inst.edu", "User", false)

	// Unauthenticated
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated but not on the allow-list
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/accounts", nil, testutils.AuthHeaders(userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListAccounts(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	testutils.CreateAccount(t, testCtx, "user@inst.edu", "User", false)
	testutils.CreateAccount(t, testCtx, "host@inst.edu", "Host", true)
	_, adminToken := testutils.CreateAdmin(t, testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/accounts", nil, testutils.AuthHeaders(adminToken))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AccountListResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.Len(t, resp.Accounts, 3)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/accounts?host_only=true", nil, testutils.AuthHeaders(adminToken))
	require.Equal(t, http.StatusOK, w.Code)

	testutils.DecodeJSON(t, w, &resp)
	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "host@inst.edu", resp.Accounts[0].Email)
}

func TestHostTransitions(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	account, _ := testutils.CreateAccount(t, testCtx, "user@inst.edu", "User", false)
	_, adminToken := testutils.CreateAdmin(t, testCtx)

	approvePath := fmt.Sprintf("/api/admin/accounts/%d/approve-host", account.ID)
	revokePath := fmt.Sprintf("/api/admin/accounts/%d/revoke-host", account.ID)

	// Revoking a non-host conflicts
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, revokePath, nil, testutils.AuthHeaders(adminToken))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Approve succeeds once
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, approvePath, nil, testutils.AuthHeaders(adminToken))
	require.Equal(t, http.StatusOK, w.Code)

	var view models.AccountView
	testutils.DecodeJSON(t, w, &view)
	assert.True(t, view.IsHost)

	// Approving an existing host conflicts and leaves state untouched
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, approvePath, nil, testutils.AuthHeaders(adminToken))
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, err := testCtx.Repo.GetAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsHost)

	// Revoke flips it back
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, revokePath, nil, testutils.AuthHeaders(adminToken))
	require.Equal(t, http.StatusOK, w.Code)

	testutils.DecodeJSON(t, w, &view)
	assert.False(t, view.IsHost)
}

func TestHostTransitionMissingAccount(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	_, adminToken := testutils.CreateAdmin(t, testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/admin/accounts/424242/approve-host", nil, testutils.AuthHeaders(adminToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
