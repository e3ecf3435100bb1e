package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrVerificationFailed is returned for every identity-provider failure,
// including provider unavailability. The caller treats all of them as an
// unauthenticated request.
var ErrVerificationFailed = errors.New("identity verification failed")

// IDTokenVerifier validates a third-party identity token and returns the
// verified email and display name.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (email, name string, err error)
}

const defaultTokenInfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// TokenInfoVerifier verifies Google ID tokens against the tokeninfo
// endpoint and checks the audience claim against the registered client ID.
type TokenInfoVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

func NewTokenInfoVerifier(clientID string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID: clientID,
		endpoint: defaultTokenInfoEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type tokenInfoResponse struct {
	Audience      string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, rawToken string) (string, string, error) {
	reqURL := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(rawToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", "", ErrVerificationFailed
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", "", ErrVerificationFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", ErrVerificationFailed
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", ErrVerificationFailed
	}

	if info.Audience != v.clientID || info.Email == "" || info.EmailVerified != "true" {
		return "", "", ErrVerificationFailed
	}

	return info.Email, info.Name, nil
}
