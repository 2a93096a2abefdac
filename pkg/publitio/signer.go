package publitio

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"
)

// Nonce bounds: eight decimal digits, max exclusive.
const (
	nonceMin = 10000000
	nonceMax = 100000000
)

// Auth query parameter names, in the order they are appended.
const (
	ParamAPIKey       = "api_key"
	ParamAPITimestamp = "api_timestamp"
	ParamAPINonce     = "api_nonce"
	ParamAPISignature = "api_signature"
)

var nonceRange = big.NewInt(nonceMax - nonceMin)

// SignedQuery is the authentication fragment attached to a single request.
// It must not be reused across requests.
type SignedQuery struct {
	Key       string
	Timestamp string
	Nonce     string
	Signature string
}

// Params returns the four auth parameters in wire order.
func (q SignedQuery) Params() Params {
	return Params{
		{Key: ParamAPIKey, Value: q.Key},
		{Key: ParamAPITimestamp, Value: q.Timestamp},
		{Key: ParamAPINonce, Value: q.Nonce},
		{Key: ParamAPISignature, Value: q.Signature},
	}
}

// Signer produces a fresh SignedQuery for every request.
type Signer struct {
	key     string
	secret  string
	now     func() time.Time
	entropy io.Reader
}

// NewSigner creates a signer using the system clock and crypto/rand.
func NewSigner(key, secret string) *Signer {
	return &Signer{
		key:     key,
		secret:  secret,
		now:     time.Now,
		entropy: rand.Reader,
	}
}

// Sign returns a new signed query. It only fails when the entropy source does.
func (s *Signer) Sign() (SignedQuery, error) {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	n, err := rand.Int(s.entropy, nonceRange)
	if err != nil {
		return SignedQuery{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := strconv.FormatInt(n.Int64()+nonceMin, 10)

	return SignedQuery{
		Key:       s.key,
		Timestamp: timestamp,
		Nonce:     nonce,
		Signature: Signature(timestamp, nonce, s.secret),
	}, nil
}

// Signature is the lowercase hex SHA-1 of timestamp, nonce and secret
// concatenated without separators. The API only accepts SHA-1 here.
func Signature(timestamp, nonce, secret string) string {
	sum := sha1.Sum([]byte(timestamp + nonce + secret))
	return hex.EncodeToString(sum[:])
}

// ValidNonce reports whether s is a decimal integer in the nonce range.
func ValidNonce(s string) bool {
	if len(s) != 8 {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= nonceMin && n < nonceMax
}
