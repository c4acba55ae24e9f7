package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/jwt"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is who the identity provider says the bearer is.
type Identity struct {
	UID   string
	Email string
}

// Verifier turns a bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// New picks the verifier configured by identity.mode.
func New(cfg *config.Config) (Verifier, error) {
	switch cfg.Identity.Mode {
	case "", "local":
		if cfg.JWT.Secret == "" {
			return nil, errors.New("identity: local mode requires jwt.secret")
		}
		return NewLocalVerifier(cfg.JWT.Secret), nil
	case "remote":
		if cfg.Identity.URL == "" {
			return nil, errors.New("identity: remote mode requires identity.url")
		}
		timeout := time.Duration(cfg.Identity.TimeoutSeconds) * time.Second
		return NewRemoteVerifier(cfg.Identity.URL, cfg.Identity.AnonKey, timeout), nil
	default:
		return nil, fmt.Errorf("identity: unknown mode %q", cfg.Identity.Mode)
	}
}

// LocalVerifier checks HS256 tokens signed with the provider's JWT secret.
type LocalVerifier struct {
	secret string
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: secret}
}

func (v *LocalVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := jwt.ParseToken(token, v.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{
		UID:   claims.Subject,
		Email: access.NormalizeEmail(claims.Email),
	}, nil
}

// RemoteVerifier asks the provider's /auth/v1/user endpoint about the token.
type RemoteVerifier struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewRemoteVerifier(baseURL, apiKey string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = v.timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var user remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity provider response: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UID:   user.ID,
		Email: access.NormalizeEmail(user.Email),
	}, nil
}
