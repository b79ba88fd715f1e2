package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

// Signature schemes. Iroha 1.x peers built with the default crypto provider
// verify ed25519-sha3 and take the bare hex public key. Peers built with
// Ursa verify standard ed25519 and take multihash keys.
const (
	SchemeEd25519Sha3 = "ed25519-sha3"
	SchemeEd25519     = "ed25519"
)

// ed25519 public keys are sent as multihash: varint code 0xed, length 0x20.
const ed25519MultihashPrefix = "ed0120"

// Signer produces ledger signatures over payload bytes.
type Signer interface {
	Sign(payload []byte) (Signature, error)
}

// NewSigner builds the signer for scheme from a hex-encoded 32-byte seed.
func NewSigner(scheme, seedHex string) (Signer, error) {
	switch scheme {
	case SchemeEd25519Sha3:
		return NewSha3Signer(seedHex)
	case SchemeEd25519:
		return NewEd25519Signer(seedHex)
	default:
		return nil, fmt.Errorf("unknown signature scheme %q", scheme)
	}
}

func decodeSeed(seedHex string) ([]byte, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}

// Ed25519Signer signs the SHA3-256 hash of a payload with an ed25519 key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519Signer builds a signer from a hex-encoded 32-byte seed.
func NewEd25519Signer(seedHex string) (*Ed25519Signer, error) {
	seed, err := decodeSeed(seedHex)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PublicKey returns the multihash-encoded public key.
func (s *Ed25519Signer) PublicKey() string {
	return ed25519MultihashPrefix + hex.EncodeToString(s.key.Public().(ed25519.PublicKey))
}

// Sign implements Signer.
func (s *Ed25519Signer) Sign(payload []byte) (Signature, error) {
	hash := sha3.Sum256(payload)
	return Signature{
		PublicKey: s.PublicKey(),
		Signature: hex.EncodeToString(ed25519.Sign(s.key, hash[:])),
	}, nil
}

// Sha3Signer signs the SHA3-256 hash of a payload with ed25519-sha3: RFC 8032
// ed25519 with SHA3-512 in place of SHA-512 for key expansion and nonces.
type Sha3Signer struct {
	scalar *edwards25519.Scalar
	prefix []byte
	public []byte
}

// NewSha3Signer builds a signer from a hex-encoded 32-byte seed.
func NewSha3Signer(seedHex string) (*Sha3Signer, error) {
	seed, err := decodeSeed(seedHex)
	if err != nil {
		return nil, err
	}

	h := sha3.Sum512(seed)
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &Sha3Signer{
		scalar: s,
		prefix: append([]byte(nil), h[32:]...),
		public: new(edwards25519.Point).ScalarBaseMult(s).Bytes(),
	}, nil
}

// PublicKey returns the hex-encoded public key.
func (s *Sha3Signer) PublicKey() string {
	return hex.EncodeToString(s.public)
}

// Sign implements Signer.
func (s *Sha3Signer) Sign(payload []byte) (Signature, error) {
	msg := sha3.Sum256(payload)

	r, err := edwards25519.NewScalar().SetUniformBytes(sum512(s.prefix, msg[:]))
	if err != nil {
		return Signature{}, fmt.Errorf("failed to derive nonce: %w", err)
	}
	R := new(edwards25519.Point).ScalarBaseMult(r).Bytes()

	k, err := edwards25519.NewScalar().SetUniformBytes(sum512(R, s.public, msg[:]))
	if err != nil {
		return Signature{}, fmt.Errorf("failed to derive challenge: %w", err)
	}
	S := edwards25519.NewScalar().MultiplyAdd(k, s.scalar, r)

	return Signature{
		PublicKey: s.PublicKey(),
		Signature: hex.EncodeToString(append(R, S.Bytes()...)),
	}, nil
}

func sum512(parts ...[]byte) []byte {
	h := sha3.New512()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
