// Package signer produces and checks signed relative URLs. A signed URL
// carries an expires query parameter and an HMAC-SHA256 signature over the
// path plus expiry, so the link is verifiable without server-side state.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

type Signer struct {
	key []byte
}

func New(key []byte) *Signer {
	return &Signer{key: key}
}

// Sign returns path with expires and signature query parameters appended.
// The path must be relative and carry no query string of its own.
func (s *Signer) Sign(path string, expires time.Time) string {
	base := fmt.Sprintf("%s?expires=%d", path, expires.Unix())
	return base + "&signature=" + s.compute(base)
}

// Verify checks the signature and expiry of a previously signed path. The
// query values are the ones received with the request.
func (s *Signer) Verify(path string, query url.Values) bool {
	expiresRaw := query.Get("expires")
	signature := query.Get("signature")
	if expiresRaw == "" || signature == "" {
		return false
	}
	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > expires {
		return false
	}
	base := fmt.Sprintf("%s?expires=%d", path, expires)
	expected := s.compute(base)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Signer) compute(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
