package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
)

// ErrUserInfoRejected is returned when Auth0 refuses the access token
var ErrUserInfoRejected = errors.New("auth0 rejected the access token")

// Auth0UserInfo is the profile returned by /userinfo
type Auth0UserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nickname      string `json:"nickname,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Auth0Service reads user profiles for the current token
type Auth0Service struct {
	userInfoURL string
	httpClient  *http.Client
}

func NewAuth0Service(cfg *config.Config) *Auth0Service {
	return &Auth0Service{
		userInfoURL: tenantURL(cfg.Auth0Domain) + "userinfo",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// tenantURL turns a bare tenant domain into https://domain/. A domain that
// already carries a scheme is kept, which lets tests point at httptest.
func tenantURL(domain string) string {
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return strings.TrimRight(domain, "/") + "/"
}

// GetUserInfo fetches the profile behind accessToken
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call userinfo: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUserInfoRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var info Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.New("userinfo response has no subject")
	}
	return &info, nil
}
