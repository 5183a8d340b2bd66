package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/metrics"
)

const defaultTokenURL = "https://www.reddit.com/api/v1/access_token"

// Authenticator exchanges a credential set for an application-only bearer token
type Authenticator struct {
	tokenURL   string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// AuthOption configures the Authenticator
type AuthOption func(*Authenticator)

// WithTokenURL sets a custom token endpoint
func WithTokenURL(u string) AuthOption {
	return func(a *Authenticator) {
		a.tokenURL = u
	}
}

// WithAuthHTTPClient sets a custom HTTP client for token exchanges
func WithAuthHTTPClient(hc *http.Client) AuthOption {
	return func(a *Authenticator) {
		a.httpClient = hc
	}
}

// WithAuthMetrics records token exchanges as upstream requests
func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(a *Authenticator) {
		a.metrics = m
	}
}

// NewAuthenticator creates a new token authenticator
func NewAuthenticator(opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		tokenURL: defaultTokenURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	a.httpClient = instrument(a.httpClient, a.metrics)

	return a
}

// Acquire performs one client-credentials exchange.
// Tokens are neither cached nor reused.
func (a *Authenticator) Acquire(ctx context.Context, creds CredentialSet) (*oauth2.Token, error) {
	cfg := clientcredentials.Config{
		ClientID:     creds.ID,
		ClientSecret: creds.Secret,
		TokenURL:     a.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	base := a.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{
		Timeout:   a.httpClient.Timeout,
		Transport: &userAgentTransport{userAgent: creds.UserAgent, base: base},
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, hc))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, fmt.Errorf("%w: token endpoint rejected client %s (status %d)", entity.ErrAuth, creds.ID, status)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%w: token exchange: %w", entity.ErrUpstream, err)
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", entity.ErrAuth)
	}

	return tok, nil
}
