package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSigningKey is returned by GenerateToken when only a public key is
// configured.
var ErrNoSigningKey = errors.New("no signing key configured")

// JWTConfig selects how tokens are signed and verified. The first non-empty
// key among PrivateKeyPEM, PublicKeyPEM and Secret wins.
type JWTConfig struct {
	// Secret is an HMAC-SHA256 shared key.
	Secret string

	// PrivateKeyPEM is an RSA private key; tokens are signed and verified
	// with RS256.
	PrivateKeyPEM string

	// PublicKeyPEM is an RSA public key for services that only verify
	// tokens minted elsewhere.
	PublicKeyPEM string

	Issuer string

	// Expiration is the lifetime of generated tokens. Defaults to one hour.
	Expiration time.Duration
}

// JWTService issues and verifies bearer tokens.
type JWTService struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	ttl       time.Duration
}

// NewJWTService parses the configured key material.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{issuer: cfg.Issuer, ttl: cfg.Expiration}
	if svc.ttl <= 0 {
		svc.ttl = time.Hour
	}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA private key: %w", err)
		}
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		svc.method, svc.verifyKey = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		secret := []byte(cfg.Secret)
		svc.method, svc.signKey, svc.verifyKey = jwt.SigningMethodHS256, secret, secret
	default:
		return nil, errors.New("jwt: one of PrivateKeyPEM, PublicKeyPEM or Secret is required")
	}
	return svc, nil
}

// GenerateToken issues a token for subject acting on behalf of tenantID.
func (s *JWTService) GenerateToken(subject string, tenantID uuid.UUID, roles []string) (string, error) {
	if s.signKey == nil {
		return "", ErrNoSigningKey
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		TenantID: tenantID,
		Roles:    roles,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", s.method.Alg(), err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, expiry and issuer of a token and
// returns its claims. Tokens signed with any other algorithm are rejected.
func (s *JWTService) ValidateToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key.
func LoadKeyFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file %q: %w", path, err)
	}
	return string(data), nil
}

// GenerateKeyPair returns a fresh 2048-bit RSA key as PKCS#1 private and
// PKIX public PEM blocks.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %w", err)
	}
	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privateKeyPEM, publicKeyPEM, nil
}
