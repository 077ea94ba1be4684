package xapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

const oauthSignatureMethod = "HMAC-SHA1"
const oauthVersion = "1.0"

// Credentials holds the four OAuth 1.0a secrets for the posting account.
// Immutable for the process lifetime, never logged.
type Credentials struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Field: "api_key"}
	}
	if strings.TrimSpace(c.APIKeySecret) == "" {
		return &ConfigError{Field: "api_key_secret"}
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return &ConfigError{Field: "access_token"}
	}
	if strings.TrimSpace(c.AccessTokenSecret) == "" {
		return &ConfigError{Field: "access_token_secret"}
	}
	return nil
}

// Signer computes OAuth 1.0a Authorization headers. The nonce source and
// clock are injectable so signatures can be tested against fixed vectors.
type Signer struct {
	creds Credentials
	nonce func() string
	now   func() time.Time
}

func NewSigner(creds Credentials) *Signer {
	return &Signer{
		creds: creds,
		nonce: randomNonce,
		now:   time.Now,
	}
}

// AuthorizationHeader builds the OAuth header for one request. params are
// the request parameters that participate in signing (query or form);
// multipart and JSON bodies are excluded per the protocol, so callers pass
// nil for those requests.
func (s *Signer) AuthorizationHeader(method, baseURL string, params map[string]string) string {
	oauth := map[string]string{
		"oauth_consumer_key":     s.creds.APIKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": oauthSignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          oauthVersion,
	}

	all := make(map[string]string, len(oauth)+len(params))
	for k, v := range params {
		all[k] = v
	}
	for k, v := range oauth {
		all[k] = v
	}

	signingKey := percentEncode(s.creds.APIKeySecret) + "&" + percentEncode(s.creds.AccessTokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(signatureBaseString(method, baseURL, all)))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	pairs := encodePairs(oauth)
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+`="`+p.value+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

type paramPair struct {
	key   string
	value string
}

// encodePairs percent-encodes all keys and values and sorts the result by
// encoded key, ties broken by encoded value, ascending byte order.
func encodePairs(params map[string]string) []paramPair {
	pairs := make([]paramPair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, paramPair{key: percentEncode(k), value: percentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})
	return pairs
}

func signatureBaseString(method, baseURL string, params map[string]string) string {
	pairs := encodePairs(params)
	kv := make([]string, 0, len(pairs))
	for _, p := range pairs {
		kv = append(kv, p.key+"="+p.value)
	}
	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(kv, "&"))
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes per RFC 3986: unreserved characters pass through
// untouched, everything else becomes %XX with uppercase hex. net/url is
// deliberately not used here, its encoders diverge from the RFC.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func randomNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
