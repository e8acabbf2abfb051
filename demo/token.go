package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceAccess  = "satgate:access"
	audienceRefresh = "satgate:refresh"
	issuer          = "satgate-demo"
)

type claims struct {
	jwt.RegisteredClaims
	BudgetSats int64 `json:"budgetSats,omitempty"`
}

func (e *Engine) mintToken(quoteID, audience string, ttl time.Duration, budget int64) (string, *claims, error) {
	now := e.clock()
	tokenClaims := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   quoteID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  jwt.ClaimStrings{audience},
		},
		BudgetSats: budget,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signed, err := token.SignedString(e.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, tokenClaims, nil
}

func (e *Engine) parseToken(tokenString, audience string) (*claims, error) {
	tokenClaims := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, tokenClaims, func(token *jwt.Token) (interface{}, error) {
		return e.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(e.clock),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return tokenClaims, nil
}

// signChallenge binds challenge fields with an HMAC signature
func (e *Engine) signChallenge(fields ...string) (string, error) {
	signingString := strings.Join(fields, ":")
	signature, err := jwt.SigningMethodHS256.Sign(signingString, e.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge: %w", err)
	}
	return fmt.Sprintf("%x", signature), nil
}
