package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/config"
)

const SessionCookieName = "NDSession"

const SessionDuration = time.Hour * 24 * 7

type Claims struct {
	Username string    `json:"username"`
	Expires  time.Time `json:"expires"`
}

/*
Issues and verifies stateless session tokens. A token is the base64url-encoded
JSON claims followed by a "." and an HMAC-SHA256 signature over the encoded
claims. There is no server-side session state; possession of a valid,
unexpired token is the session.
*/
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.SecretKey),
		ttl:    SessionDuration,
	}
}

func (s *TokenService) Issue(username string) string {
	claims := Claims{
		Username: username,
		Expires:  time.Now().Add(s.ttl),
	}
	payload, _ := json.Marshal(claims)
	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	return payloadEnc + "." + s.sign(payloadEnc)
}

// Verifies a token and returns the username it was issued for. Tampered,
// malformed, and expired tokens all simply yield ok = false; none of these
// cases are errors worth distinguishing for callers.
func (s *TokenService) Verify(token string) (string, bool) {
	payloadEnc, signature, found := strings.Cut(token, ".")
	if !found {
		return "", false
	}

	// Check the signature before even looking at the payload.
	if !hmac.Equal([]byte(s.sign(payloadEnc)), []byte(signature)) {
		return "", false
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return "", false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", false
	}

	if time.Now().After(claims.Expires) {
		return "", false
	}

	return claims.Username, true
}

func (s *TokenService) sign(payloadEnc string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payloadEnc))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: token,

		Domain:  config.Config.Auth.CookieDomain,
		Path:    "/",
		Expires: time.Now().Add(SessionDuration),

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Domain: config.Config.Auth.CookieDomain,
	Path:   "/",
	MaxAge: -1,
}
