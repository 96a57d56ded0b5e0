package jws

import (
	"encoding/base64"
	"math/big"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
)

// GenerateJWK creates a JWK representation of an asymmetric signing key's
// public half. Returns false for keys with no publishable material (HMAC).
func GenerateJWK(key *keys.SigningKey) (keys.JWK, bool) {
	if rsaKey := key.RSAPublicKey(); rsaKey != nil {
		return keys.JWK{
			KID:       key.KID,
			KeyType:   "RSA",
			Algorithm: string(key.Algorithm),
			Use:       "sig",
			N:         base64.RawURLEncoding.EncodeToString(rsaKey.N.Bytes()),
			E:         base64.RawURLEncoding.EncodeToString(big.NewInt(int64(rsaKey.E)).Bytes()),
		}, true
	}

	if ecKey := key.ECDSAPublicKey(); ecKey != nil {
		byteLen := (ecKey.Curve.Params().BitSize + 7) / 8
		return keys.JWK{
			KID:       key.KID,
			KeyType:   "EC",
			Algorithm: string(key.Algorithm),
			Use:       "sig",
			Curve:     ecKey.Curve.Params().Name,
			X:         base64.RawURLEncoding.EncodeToString(ecKey.X.FillBytes(make([]byte, byteLen))),
			Y:         base64.RawURLEncoding.EncodeToString(ecKey.Y.FillBytes(make([]byte, byteLen))),
		}, true
	}

	return keys.JWK{}, false
}

// GenerateJWKS creates a JWKS from multiple signing keys. Symmetric keys
// are skipped.
func GenerateJWKS(signingKeys []*keys.SigningKey) keys.JWKS {
	jwks := keys.JWKS{Keys: make([]keys.JWK, 0, len(signingKeys))}
	for _, key := range signingKeys {
		if jwk, ok := GenerateJWK(key); ok {
			jwks.Keys = append(jwks.Keys, jwk)
		}
	}
	return jwks
}
