package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// KeyGenerator generates signing keys for the supported JWS algorithms.
type KeyGenerator struct {
	rsaKeySize     int
	hmacSecretSize int
	validityPeriod time.Duration
	tokenGen       *TokenGenerator
}

// NewKeyGenerator creates a new key generator.
// rsaKeySize should be at least 2048 bits.
func NewKeyGenerator(rsaKeySize int, validityPeriod time.Duration) *KeyGenerator {
	return &KeyGenerator{
		rsaKeySize:     rsaKeySize,
		hmacSecretSize: 32,
		validityPeriod: validityPeriod,
		tokenGen:       NewTokenGenerator(),
	}
}

// Generate creates a new signing key for the given algorithm.
// Fails with ErrUnsupportedAlgorithm for "none" and unknown algorithms.
func (g *KeyGenerator) Generate(alg keys.Algorithm) (*keys.SigningKey, error) {
	if !alg.Supported() {
		return nil, apperrors.Wrap(apperrors.ErrUnsupportedAlgorithm, string(alg))
	}

	kid, err := g.tokenGen.GenerateKID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}

	now := time.Now().UTC()
	key := &keys.SigningKey{
		KID:       kid,
		Algorithm: alg,
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(g.validityPeriod),
	}

	switch alg {
	case keys.AlgRS256, keys.AlgRS384, keys.AlgRS512:
		if err := g.generateRSA(key); err != nil {
			return nil, err
		}
	case keys.AlgES256, keys.AlgES384, keys.AlgES512:
		if err := g.generateECDSA(key, alg); err != nil {
			return nil, err
		}
	case keys.AlgHS256:
		if err := g.generateHMAC(key); err != nil {
			return nil, err
		}
	}

	return key, nil
}

func (g *KeyGenerator) generateRSA(key *keys.SigningKey) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, g.rsaKeySize)
	if err != nil {
		return fmt.Errorf("failed to generate RSA key: %w", err)
	}

	privatePEM, err := encodePrivateKey(privateKey)
	if err != nil {
		return err
	}
	publicPEM, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return err
	}

	key.PrivateKey = privateKey
	key.PublicKey = &privateKey.PublicKey
	key.PrivatePEM = privatePEM
	key.PublicPEM = publicPEM
	return nil
}

func (g *KeyGenerator) generateECDSA(key *keys.SigningKey, alg keys.Algorithm) error {
	var curve elliptic.Curve
	switch alg {
	case keys.AlgES256:
		curve = elliptic.P256()
	case keys.AlgES384:
		curve = elliptic.P384()
	case keys.AlgES512:
		curve = elliptic.P521()
	}

	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	privatePEM, err := encodePrivateKey(privateKey)
	if err != nil {
		return err
	}
	publicPEM, err := encodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return err
	}

	key.PrivateKey = privateKey
	key.PublicKey = &privateKey.PublicKey
	key.PrivatePEM = privatePEM
	key.PublicPEM = publicPEM
	return nil
}

func (g *KeyGenerator) generateHMAC(key *keys.SigningKey) error {
	secret := make([]byte, g.hmacSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate HMAC secret: %w", err)
	}

	key.Secret = secret
	// HMAC secrets are symmetric: both PEM columns carry the same value
	// and the key is never published via JWKS.
	key.PrivatePEM = base64.RawURLEncoding.EncodeToString(secret)
	key.PublicPEM = ""
	return nil
}

// encodePrivateKey encodes an RSA or ECDSA private key to PKCS#8 PEM.
func encodePrivateKey(key any) (string, error) {
	keyBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	block := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: keyBytes,
	}
	return string(pem.EncodeToMemory(block)), nil
}

// encodePublicKey encodes a public key to PKIX PEM.
func encodePublicKey(key any) (string, error) {
	keyBytes, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	block := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: keyBytes,
	}
	return string(pem.EncodeToMemory(block)), nil
}

// ParseKeyMaterial restores in-memory key material from the stored
// representation, based on the key's algorithm.
func ParseKeyMaterial(key *keys.SigningKey) error {
	if key.Algorithm == keys.AlgHS256 {
		secret, err := base64.RawURLEncoding.DecodeString(key.PrivatePEM)
		if err != nil {
			return fmt.Errorf("failed to decode HMAC secret: %w", err)
		}
		key.Secret = secret
		return nil
	}

	privateKey, err := ParsePrivateKey(key.PrivatePEM)
	if err != nil {
		return apperrors.Wrap(err, "failed to parse private key")
	}
	publicKey, err := ParsePublicKey(key.PublicPEM)
	if err != nil {
		return apperrors.Wrap(err, "failed to parse public key")
	}

	key.PrivateKey = privateKey
	key.PublicKey = publicKey
	return nil
}

// ParsePrivateKey parses a PEM-encoded RSA or ECDSA private key.
func ParsePrivateKey(pemData string) (any, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		switch k := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey:
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
	default:
		return nil, fmt.Errorf("unknown PEM block type: %s", block.Type)
	}
}

// ParsePublicKey parses a PEM-encoded RSA or ECDSA public key.
func ParsePublicKey(pemData string) (any, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	switch k := key.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", key)
	}
}
