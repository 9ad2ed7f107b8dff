// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"crypto"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// jwkHashAlg is the hash used for key thumbprints (signature.key_fingerprint),
// independent of whatever algorithm the key itself signs with.
const jwkHashAlg = crypto.SHA256

// signAlgFor picks the JWS algorithm for key: the algorithm embedded in the
// JWK if the operator's key-provisioning process set one, otherwise a
// sensible default per key type. Keys are expected to be EC (ES256) or RSA
// (RS256); an Ed25519 key carries its own "EdDSA" alg and is returned as-is.
func signAlgFor(key jwk.Key) jwa.SignatureAlgorithm {
	if alg, ok := key.Algorithm(); ok {
		if sigAlg, ok := alg.(jwa.SignatureAlgorithm); ok {
			return sigAlg
		}
	}
	switch key.KeyType() {
	case jwa.RSA():
		return jwa.RS256()
	case jwa.OKP():
		return jwa.EdDSA()
	default:
		return jwa.ES256()
	}
}
