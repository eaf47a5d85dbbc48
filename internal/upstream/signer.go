package upstream

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/arcticshore/pickups/internal/domain"
)

const signatureTimeLayout = "2006-01-02 15:04:05"

type Credentials struct {
	AccessKey string
	SecretKey string
}

// Signer produces the per-request auth header set expected by the
// reservation platform: Base64(HMAC-SHA1(secret, date+accessKey+method+path)).
type Signer struct {
	creds Credentials
	now   func() time.Time
}

func NewSigner(creds Credentials) *Signer {
	return &Signer{creds: creds, now: time.Now}
}

// Headers signs method+path with the current wall-clock time. The signing
// timestamp is always "now", even when the logical query targets a past
// date; signing with the queried date fails auth upstream.
func (s *Signer) Headers(method, path string) (http.Header, error) {
	if s.creds.AccessKey == "" || s.creds.SecretKey == "" {
		return nil, domain.ErrCredentialsUnavailable
	}

	date := s.now().UTC().Format(signatureTimeLayout)

	mac := hmac.New(sha1.New, []byte(s.creds.SecretKey))
	mac.Write([]byte(date + s.creds.AccessKey + method + path))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headers := http.Header{}
	headers.Set("AccessKey", s.creds.AccessKey)
	headers.Set("Date", date)
	headers.Set("Signature", signature)
	headers.Set("Content-Type", "application/json")
	return headers, nil
}
