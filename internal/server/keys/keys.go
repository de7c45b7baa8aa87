// Package keys supplies the RSA signing key and the public verification key
// set used for access tokens. Key material can come from local PEM files or
// from an S3-compatible bucket; callers only see the Provider interface.
//
// The verification set always contains the public half of the current signing
// key plus any retired keys, so rotating the signing key does not invalidate
// access tokens issued before the rotation.
package keys

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/osavchuk/authsvc/internal/common"
)

// Provider abstracts the origin of key material.
type Provider interface {
	// SigningKey returns the current private signing key.
	SigningKey() *rsa.PrivateKey

	// KeyID returns the key id of the current signing key.
	KeyID() string

	// VerificationKeys returns the published verification keys by key id.
	// The returned map must be treated as read-only.
	VerificationKeys() map[string]*rsa.PublicKey
}

// Set is an in-memory Provider assembled from PEM material.
type Set struct {
	private *rsa.PrivateKey
	kid     string
	verify  map[string]*rsa.PublicKey
}

// NewSet parses the private signing key and zero or more retired public keys.
// All parse failures map to common.ErrKeyMaterial so the caller can refuse to
// start.
func NewSet(privatePEM []byte, retiredPublicPEMs ...[]byte) (*Set, error) {
	private, err := ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, err
	}

	kid, err := Fingerprint(&private.PublicKey)
	if err != nil {
		return nil, err
	}

	verify := map[string]*rsa.PublicKey{kid: &private.PublicKey}
	for _, raw := range retiredPublicPEMs {
		pub, err := ParsePublicKey(raw)
		if err != nil {
			return nil, err
		}
		retiredKid, err := Fingerprint(pub)
		if err != nil {
			return nil, err
		}
		verify[retiredKid] = pub
	}

	return &Set{private: private, kid: kid, verify: verify}, nil
}

func (s *Set) SigningKey() *rsa.PrivateKey { return s.private }

func (s *Set) KeyID() string { return s.kid }

func (s *Set) VerificationKeys() map[string]*rsa.PublicKey { return s.verify }

// Fingerprint derives a stable key id: the first 16 hex characters of the
// SHA-256 digest of the DER-encoded public key. Issuing and verifying nodes
// compute the same id without coordination.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrKeyMaterial, err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])[:16], nil
}

// ParsePrivateKey decodes a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
func ParsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in private key", common.ErrKeyMaterial)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMaterial, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", common.ErrKeyMaterial)
	}
	return key, nil
}

// ParsePublicKey decodes a PEM-encoded RSA public key (PKIX or PKCS#1).
func ParsePublicKey(raw []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in public key", common.ErrKeyMaterial)
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMaterial, err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not RSA", common.ErrKeyMaterial)
	}
	return key, nil
}
