// Package fairness implements the commitment scheme and hash derivation
// behind every real-money round.
//
// The server commits to a secret seed by publishing its SHA-256 hash before
// any round is played. Each round's randomness is
// HMAC-SHA256(server_seed, client_seed + ":" + nonce); after the session the
// server seed is revealed and any party can recompute every outcome.
package fairness

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Commitment is the seed pair a session is bound to. ServerSeed stays
// secret until the session closes; ServerSeedHash is published at open.
// Both seeds are hex strings and immutable for the session's lifetime.
type Commitment struct {
	ServerSeed     string `json:"server_seed,omitempty"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
}

// NewCommitment generates a fresh 256-bit server seed and its hash. If
// clientSeed is empty a random one is generated. An entropy-source failure
// is fatal: no commitment is returned.
func NewCommitment(clientSeed string) (*Commitment, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("fairness: entropy source failed: %w", err)
	}
	serverSeed := hex.EncodeToString(seed[:])
	if clientSeed == "" {
		var cs [16]byte
		if _, err := rand.Read(cs[:]); err != nil {
			return nil, fmt.Errorf("fairness: entropy source failed: %w", err)
		}
		clientSeed = hex.EncodeToString(cs[:])
	}
	sum := sha256.Sum256([]byte(serverSeed))
	return &Commitment{
		ServerSeed:     serverSeed,
		ServerSeedHash: hex.EncodeToString(sum[:]),
		ClientSeed:     clientSeed,
	}, nil
}

// Derive computes the round hash: HMAC-SHA256 keyed by the server seed over
// clientSeed + ":" + nonce. Deterministic and side-effect free.
func Derive(serverSeed, clientSeed string, nonce uint64) [32]byte {
	mac := hmac.New(sha256.New, []byte(serverSeed))
	mac.Write([]byte(clientSeed))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.FormatUint(nonce, 10)))
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// deriveBlock extends a round's randomness beyond one hash. Block 0 is
// Derive; block b > 0 appends ":" + b to the message so extra draws stay a
// pure function of (server_seed, client_seed, nonce).
func deriveBlock(serverSeed, clientSeed string, nonce uint64, block int) [32]byte {
	if block == 0 {
		return Derive(serverSeed, clientSeed, nonce)
	}
	mac := hmac.New(sha256.New, []byte(serverSeed))
	mac.Write([]byte(clientSeed))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.FormatUint(nonce, 10)))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.Itoa(block)))
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// UnitFloat reads 4 bytes at byteOffset as a big-endian uint32 and divides
// by 2^32, giving a uniform float in [0, 1). Distinct offsets give
// statistically independent draws from one hash.
func UnitFloat(h [32]byte, byteOffset int) float64 {
	if byteOffset < 0 || byteOffset+4 > len(h) {
		byteOffset = 0
	}
	v := binary.BigEndian.Uint32(h[byteOffset : byteOffset+4])
	return float64(v) / (1 << 32)
}

// Floats returns n uniform draws for one round. A 32-byte hash yields 8
// draws (offsets 0, 4, ... 28); rounds that need more consume further
// blocks from deriveBlock. Floats(s, c, nonce, 1)[0] is the round's primary
// raw value.
func Floats(serverSeed, clientSeed string, nonce uint64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	var h [32]byte
	for i := 0; i < n; i++ {
		if i%8 == 0 {
			h = deriveBlock(serverSeed, clientSeed, nonce, i/8)
		}
		out[i] = UnitFloat(h, (i%8)*4)
	}
	return out
}

// VerifyCommitment reports whether serverSeedHash is the SHA-256 of
// serverSeed. This is the check an auditor runs after reveal.
func VerifyCommitment(serverSeed, serverSeedHash string) bool {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:]) == serverSeedHash
}

// VerifyRound recomputes the round hash and compares it to expectedHex.
func VerifyRound(serverSeed, clientSeed string, nonce uint64, expectedHex string) bool {
	h := Derive(serverSeed, clientSeed, nonce)
	return hex.EncodeToString(h[:]) == expectedHex
}

// HashHex is a convenience for storing a derived hash.
func HashHex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
