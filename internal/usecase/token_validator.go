package usecase

import (
	"slotbook/internal/domain/identity"
	"slotbook/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator provides token validation for middleware. Token issuance is
// the identity provider's job; this side only consumes.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, string, identity.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, string, identity.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", "", err
	}

	role, err := identity.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", "", err
	}

	return claims.ClientID, claims.Email, role, nil
}
