// Package session keeps the admin login in Valkey. A session exists only
// after the shared admin password was accepted; its random ID travels in
// an HttpOnly cookie and also keys the admin's draft workspace.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the browser cookie carrying the session ID.
	CookieName = "gap_session"

	// DefaultIdleTTL logs an admin out after this long without a request.
	// Every request that loads the session pushes the expiry forward.
	DefaultIdleTTL = 2 * time.Hour

	keyPrefix = "session:"

	// idLen is the length of crypto/rand.Text output.
	idLen = 26
)

// Data is the JSON payload stored per session.
type Data struct {
	// ID is the session identifier; it is not part of the payload.
	ID        string    `json:"-"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes sessions in Valkey.
type Store struct {
	client *redis.Client
	idle   time.Duration
	secure bool
}

// NewStore returns a store on client. secure sets the cookie's Secure
// flag and is on everywhere except local development.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, idle: DefaultIdleTTL, secure: secure}
}

func (s *Store) key(id string) string { return keyPrefix + id }

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Create stores data under a fresh ID and sets the cookie. The cookie
// lives for the browser session; Valkey enforces the idle timeout.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id := rand.Text()
	data.ID = id
	data.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.idle).Err(); err != nil {
		return "", fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, s.cookie(id, 0))
	return id, nil
}

// Get loads the session named by the request cookie and slides its
// expiry. A missing, malformed or expired session yields nil, nil.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || !validID(c.Value) {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, s.key(c.Value), s.idle).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	data.ID = c.Value
	return &data, nil
}

// Destroy clears the cookie and deletes the session. It returns the ID
// that was logged out so the caller can drop the matching drafts, or ""
// when the request carried no session.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", nil
	}
	http.SetCookie(w, s.cookie("", -1))

	if !validID(c.Value) {
		return "", nil
	}
	if err := s.client.Del(ctx, s.key(c.Value)).Err(); err != nil {
		return c.Value, fmt.Errorf("session: delete: %w", err)
	}
	return c.Value, nil
}

// validID rejects cookie values that rand.Text could not have produced.
func validID(id string) bool {
	if len(id) != idLen {
		return false
	}
	for _, c := range id {
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return false
		}
	}
	return true
}
