package keys

import (
	"encoding/base64"
	"math/big"
	"sort"
)

// JWK is the public JSON representation of one RSA verification key.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Document is a JWKS key-set document as served to relying parties.
type Document struct {
	Keys []JWK `json:"keys"`
}

// JWKS renders the provider's verification key set in JWKS form, ordered by
// key id so the output is stable.
func JWKS(p Provider) Document {
	verify := p.VerificationKeys()

	kids := make([]string, 0, len(verify))
	for kid := range verify {
		kids = append(kids, kid)
	}
	sort.Strings(kids)

	doc := Document{Keys: make([]JWK, 0, len(kids))}
	for _, kid := range kids {
		pub := verify[kid]
		doc.Keys = append(doc.Keys, JWK{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	return doc
}
