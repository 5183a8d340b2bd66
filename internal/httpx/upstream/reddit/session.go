package reddit

import (
	"context"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// Session binds one bearer token to the credential set it was issued for.
// Requests made through a session share that credential's pacing limiter.
type Session struct {
	client       *Client
	token        string
	userAgent    string
	credentialID string
}

// CredentialID returns the client id the session token belongs to
func (s *Session) CredentialID() string {
	return s.credentialID
}

// Profile fetches the user's public profile
func (s *Session) Profile(ctx context.Context, username string) (*entity.Profile, error) {
	return s.client.Profile(ctx, s, username)
}

// FetchAll walks one listing of the user to the end
func (s *Session) FetchAll(ctx context.Context, username string, kind entity.Kind, sort entity.Sort) ([]entity.RawItem, error) {
	return s.client.FetchAll(ctx, s, ListingRequest{Username: username, Kind: kind, Sort: sort})
}

// CountRecent counts the newest items of one listing, up to limit
func (s *Session) CountRecent(ctx context.Context, username string, kind entity.Kind, limit int) (int, error) {
	return s.client.CountRecent(ctx, s, username, kind, limit)
}

// Connector opens sessions, rotating credentials on every call
type Connector struct {
	rotator *Rotator
	auth    *Authenticator
	client  *Client
}

// NewConnector creates a new session connector
func NewConnector(rotator *Rotator, auth *Authenticator, client *Client) *Connector {
	return &Connector{
		rotator: rotator,
		auth:    auth,
		client:  client,
	}
}

// Connect takes the next credential set and exchanges it for a fresh token
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	creds := c.rotator.Next()

	tok, err := c.auth.Acquire(ctx, creds)
	if err != nil {
		return nil, err
	}

	return &Session{
		client:       c.client,
		token:        tok.AccessToken,
		userAgent:    creds.UserAgent,
		credentialID: creds.ID,
	}, nil
}
