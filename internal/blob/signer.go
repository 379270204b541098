package blob

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lukechampine.com/blake3"
)

// Verify failures
var (
	ErrBadSignature = errors.New("invalid signature")
	ErrExpired      = errors.New("link expired")
)

// Signer produces and checks expiring URL signatures using keyed BLAKE3
type Signer struct {
	key     []byte
	baseURL string
	now     func() time.Time
}

// NewSigner derives a 32-byte MAC key from secret. URLs are rooted at
// baseURL + "/blobs/".
func NewSigner(secret, baseURL string) *Signer {
	key := blake3.Sum256([]byte(secret))
	return &Signer{
		key:     key[:],
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *Signer) mac(path string, expires int64) string {
	h := blake3.New(32, s.key)
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Sign returns a URL for path valid for ttl
func (s *Signer) Sign(path string, ttl time.Duration) string {
	expires := s.now().Add(ttl).Unix()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", s.mac(path, expires))

	escaped := make([]string, 0)
	for _, seg := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}

	return fmt.Sprintf("%s/blobs/%s?%s", s.baseURL, strings.Join(escaped, "/"), q.Encode())
}

// Verify checks the expires and sig query parameters for path
func (s *Signer) Verify(path string, query url.Values) error {
	expires, err := strconv.ParseInt(query.Get("expires"), 10, 64)
	if err != nil {
		return ErrBadSignature
	}

	want := s.mac(path, expires)
	if subtle.ConstantTimeCompare([]byte(want), []byte(query.Get("sig"))) != 1 {
		return ErrBadSignature
	}

	if s.now().Unix() > expires {
		return ErrExpired
	}

	return nil
}
