package session

import (
	"fmt"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by backend-provisioned device tokens.
type Claims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// LoginWithToken authenticates with a token issued by the provisioning
// backend. The tenant id comes from the tid claim, so a freshly installed
// device can resolve its tenant before the accounts collection has merged.
func (s *Session) LoginWithToken(token string) (*models.Account, error) {
	if len(s.jwtKey) == 0 {
		return nil, fmt.Errorf("token login is not configured: %w", common.ErrValidation)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.TenantID == "" || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	role := models.Role(claims.Role)
	if role == "" {
		role = models.RoleInspector
	}

	account := &models.Account{
		ID:       claims.Subject,
		Name:     claims.Name,
		Username: claims.Subject,
		Role:     role,
		TenantID: claims.TenantID,
	}

	s.store.Set(State{
		Account:       account,
		TenantID:      claims.TenantID,
		Token:         token,
		Authenticated: true,
	})

	return account, nil
}
