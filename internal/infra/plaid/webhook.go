package plaid

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Webhook bodies are authenticated with a detached ES256 JWT carried in the
// Plaid-Verification header. The token's claims pin the SHA-256 of the raw
// body, and the signing key is fetched from the aggregator by key id.

const webhookMaxAge = 5 * time.Minute

type webhookClaims struct {
	RequestBodySHA256 string `json:"request_body_sha256"`
	jwt.RegisteredClaims
}

// VerifyWebhook validates the detached JWT against the raw request body.
func (c *Client) VerifyWebhook(ctx context.Context, token string, body []byte) error {
	parsed, err := jwt.ParseWithClaims(token, &webhookClaims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("webhook JWT missing kid header")
		}
		return c.fetchVerificationKey(ctx, kid)
	}, jwt.WithValidMethods([]string{"ES256"}))
	if err != nil {
		return &domain.ErrUnauthorized{Message: fmt.Sprintf("webhook verification failed: %v", err)}
	}

	claims, ok := parsed.Claims.(*webhookClaims)
	if !ok {
		return &domain.ErrUnauthorized{Message: "webhook verification failed: bad claims"}
	}

	// Reject replayed tokens.
	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > webhookMaxAge {
		return &domain.ErrUnauthorized{Message: "webhook verification failed: token too old"}
	}

	sum := sha256.Sum256(body)
	if hex.EncodeToString(sum[:]) != claims.RequestBodySHA256 {
		return &domain.ErrUnauthorized{Message: "webhook verification failed: body hash mismatch"}
	}
	return nil
}

// fetchVerificationKey retrieves the JWK for the given key id and converts
// it to an ECDSA public key.
func (c *Client) fetchVerificationKey(ctx context.Context, keyID string) (*ecdsa.PublicKey, error) {
	var resp struct {
		Key struct {
			Crv string `json:"crv"`
			X   string `json:"x"`
			Y   string `json:"y"`
		} `json:"key"`
	}
	err := c.guarded(ctx, func() error {
		return c.post(ctx, "/webhook_verification_key/get", map[string]any{"key_id": keyID}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Key.Crv != "P-256" {
		return nil, fmt.Errorf("unexpected webhook key curve %q", resp.Key.Crv)
	}

	x, err := base64.RawURLEncoding.DecodeString(resp.Key.X)
	if err != nil {
		return nil, fmt.Errorf("decode key x: %w", err)
	}
	y, err := base64.RawURLEncoding.DecodeString(resp.Key.Y)
	if err != nil {
		return nil, fmt.Errorf("decode key y: %w", err)
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}, nil
}
