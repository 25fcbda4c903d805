package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-clinic-scheduling/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

var _ auth.AuthVerifier = (*Verifier)(nil)

// Verifier implementa auth.AuthVerifier usando Odin. main lo instancia solo si
// ODIN_BASE_URL y ODIN_API_KEY están definidos; si no, el router queda en modo dev.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("odin verify failed: %w", err)
	}
	if claims.Role == "" {
		claims.Role = auth.RoleOwner
	}
	return claims, nil
}
