package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"time"
)

// Algorithm identifies a JWS signing algorithm.
type Algorithm string

const (
	AlgRS256 Algorithm = "RS256"
	AlgRS384 Algorithm = "RS384"
	AlgRS512 Algorithm = "RS512"
	AlgES256 Algorithm = "ES256"
	AlgES384 Algorithm = "ES384"
	AlgES512 Algorithm = "ES512"
	AlgHS256 Algorithm = "HS256"

	// AlgNone is representable but never accepted for signing, and only
	// accepted for verification under an explicit caller policy.
	AlgNone Algorithm = "none"
)

// Supported reports whether the algorithm can be used to sign tokens.
func (a Algorithm) Supported() bool {
	switch a {
	case AlgRS256, AlgRS384, AlgRS512, AlgES256, AlgES384, AlgES512, AlgHS256:
		return true
	}
	return false
}

// Asymmetric reports whether the algorithm uses a public/private key pair.
func (a Algorithm) Asymmetric() bool {
	switch a {
	case AlgRS256, AlgRS384, AlgRS512, AlgES256, AlgES384, AlgES512:
		return true
	}
	return false
}

// SigningKey represents key material used for signing JWTs.
// Multiple keys can exist for rotation support; retired keys stay valid for
// verification until they expire.
type SigningKey struct {
	KID        string            // Key ID (appears in JWS header)
	Algorithm  Algorithm
	PrivateKey crypto.PrivateKey // *rsa.PrivateKey or *ecdsa.PrivateKey (nil for HMAC)
	PublicKey  crypto.PublicKey  // *rsa.PublicKey or *ecdsa.PublicKey (nil for HMAC)
	Secret     []byte            // HMAC secret (nil for asymmetric keys)
	PrivatePEM string            // PEM-encoded private material (for storage, never served)
	PublicPEM  string            // PEM-encoded public material
	Active     bool              // Only one key is active for signing
	CreatedAt  time.Time
	ExpiresAt  time.Time // For automatic rotation scheduling
}

// IsValid checks if the key can be used for verification.
// Keys remain valid for verification even after rotation.
func (sk *SigningKey) IsValid() bool {
	return time.Now().UTC().Before(sk.ExpiresAt)
}

// CanSign checks if the key can be used for signing new tokens.
// Only active keys should be used for signing.
func (sk *SigningKey) CanSign() bool {
	return sk.Active && sk.IsValid()
}

// SignerMaterial returns the value golang-jwt expects for signing.
func (sk *SigningKey) SignerMaterial() any {
	if sk.Algorithm == AlgHS256 {
		return sk.Secret
	}
	return sk.PrivateKey
}

// VerifierMaterial returns the value golang-jwt expects for verification.
func (sk *SigningKey) VerifierMaterial() any {
	if sk.Algorithm == AlgHS256 {
		return sk.Secret
	}
	return sk.PublicKey
}

// RSAPublicKey returns the RSA public key, or nil for non-RSA keys.
func (sk *SigningKey) RSAPublicKey() *rsa.PublicKey {
	pk, _ := sk.PublicKey.(*rsa.PublicKey)
	return pk
}

// ECDSAPublicKey returns the ECDSA public key, or nil for non-EC keys.
func (sk *SigningKey) ECDSAPublicKey() *ecdsa.PublicKey {
	pk, _ := sk.PublicKey.(*ecdsa.PublicKey)
	return pk
}

// JWK represents a JSON Web Key for the JWKS endpoint.
type JWK struct {
	KID       string `json:"kid"`
	KeyType   string `json:"kty"`
	Algorithm string `json:"alg"`
	Use       string `json:"use"`

	// RSA
	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`

	// EC
	Curve string `json:"crv,omitempty"`
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
}

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}
