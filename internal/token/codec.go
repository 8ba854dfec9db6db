// Package token implements the signed credential codec: encoding a claim set
// into a compact signed string and decoding/verifying it back. The codec is a
// pure function of its inputs and the configured signing material; it performs
// no I/O and is safe for concurrent use.
package token

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Decode failure reasons. Callers that collapse these into a single "not
// authenticated" outcome still log which one occurred.
var (
	// ErrBadSignature is returned when the signature does not verify or the
	// signing method does not match the configured one.
	ErrBadSignature = errors.New("token: bad signature")
	// ErrMalformed is returned when the token cannot be parsed or its claims
	// are not acceptable (wrong issuer, missing parts).
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired is returned when the token is past its expires_at.
	ErrExpired = errors.New("token: expired")
)

// Claims is the claim set embedded in every issued token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
}

// JTI returns the token's unique identifier.
func (c *Claims) JTI() string { return c.ID }

// Codec encodes and decodes signed tokens. Use NewHMACCodec for a shared
// secret (HS256) or NewKeypairCodec for an RS256/ES256 key pair.
type Codec struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	now       func() time.Time
}

// NewHMACCodec returns a Codec signing and verifying with HS256 and the given
// shared secret. now is used for expiry checks; nil means the wall clock.
func NewHMACCodec(secret []byte, issuer string, now func() time.Time) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	if issuer == "" {
		return nil, errors.New("token: empty issuer")
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		issuer:    issuer,
		now:       now,
	}, nil
}

// NewKeypairCodec returns a Codec signing with the given private key and
// verifying with the matching public key. The signing method is derived from
// the key type: RS256 for RSA, ES256 for ECDSA.
func NewKeypairCodec(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer string, now func() time.Time) (*Codec, error) {
	var method jwt.SigningMethod
	switch publicKey.(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return nil, errors.New("token: unsupported key type")
	}
	if issuer == "" {
		return nil, errors.New("token: empty issuer")
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{
		method:    method,
		signKey:   privateKey,
		verifyKey: publicKey,
		issuer:    issuer,
		now:       now,
	}, nil
}

// Issuer returns the issuer stamped on every encoded token.
func (c *Codec) Issuer() string { return c.issuer }

// Encode signs the claim set and returns the compact token string. The
// codec's issuer overwrites whatever issuer the claims carry.
func (c *Codec) Encode(claims *Claims) (string, error) {
	claims.Issuer = c.issuer
	return jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
}

// Decode parses and verifies the token (signature, expiry, issuer) and
// returns its claims. Failures are reported as ErrBadSignature, ErrExpired,
// or ErrMalformed.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadSignature), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// DecodeUnsafe parses the token without verifying its signature or expiry.
// It exists so a revocation request can extract the jti and owner from a
// token that is already expired or even forged; the resulting claims must
// never be treated as authenticated.
func (c *Codec) DecodeUnsafe(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

// keyFunc rejects tokens whose signing method family differs from the
// configured one before handing back the verification key.
func (c *Codec) keyFunc(tok *jwt.Token) (any, error) {
	switch c.method.(type) {
	case *jwt.SigningMethodHMAC:
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); ok {
			return c.verifyKey, nil
		}
	case *jwt.SigningMethodRSA:
		if _, ok := tok.Method.(*jwt.SigningMethodRSA); ok {
			return c.verifyKey, nil
		}
	case *jwt.SigningMethodECDSA:
		if _, ok := tok.Method.(*jwt.SigningMethodECDSA); ok {
			return c.verifyKey, nil
		}
	}
	return nil, ErrBadSignature
}
