// Package session tracks the authenticated account and the active tenant.
// Replica merge and write propagation are gated on the tenant id exposed
// here: both are no-ops until a tenant is resolved.
package session

import (
	"fmt"
	"strings"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// State is the session store's value.
type State struct {
	Account       *models.Account `json:"account,omitempty"`
	TenantID      string          `json:"tenantId,omitempty"`
	Token         string          `json:"token,omitempty"`
	Authenticated bool            `json:"authenticated"`
}

// Session wraps the session store with login/logout behavior.
type Session struct {
	store  *store.Store[State]
	jwtKey []byte
}

// New returns a Session seeded with initial (typically the persisted session
// state, so a device stays logged in across restarts). jwtKey verifies
// backend-issued tokens; empty disables token login.
func New(initial State, jwtKey []byte) *Session {
	return &Session{store: store.New(initial), jwtKey: jwtKey}
}

// Store exposes the underlying reactive store for subscription and
// persistence.
func (s *Session) Store() *store.Store[State] { return s.store }

// TenantID returns the active tenant id, empty until login resolves one.
func (s *Session) TenantID() string { return s.store.Get().TenantID }

// Authenticated reports whether an account is logged in.
func (s *Session) Authenticated() bool { return s.store.Get().Authenticated }

// Account returns the logged-in account, nil when logged out.
func (s *Session) Account() *models.Account { return s.store.Get().Account }

// Login authenticates username/password against the replicated accounts
// collection. The accounts replica carries bcrypt hashes, so authentication
// works offline on any device that has merged at least once.
func (s *Session) Login(username, password string, accounts []models.Account) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}

	for i := range accounts {
		a := accounts[i]
		if !strings.EqualFold(a.Username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
			return nil, common.ErrUnauthorized
		}
		s.store.Set(State{Account: &a, TenantID: a.TenantID, Authenticated: true})
		return &a, nil
	}

	return nil, common.ErrUnauthorized
}

// Logout clears the session.
func (s *Session) Logout() {
	s.store.Set(State{})
}

// HashPassword produces the bcrypt hash stored on replicated accounts.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required: %w", common.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
