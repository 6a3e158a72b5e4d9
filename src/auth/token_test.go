package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundtrip(t *testing.T) {
	s := &TokenService{secret: []byte("test secret"), ttl: time.Hour}

	token := s.Issue("alice")
	username, ok := s.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestTokenTampering(t *testing.T) {
	s := &TokenService{secret: []byte("test secret"), ttl: time.Hour}
	token := s.Issue("alice")

	t.Run("garbage", func(t *testing.T) {
		_, ok := s.Verify("total garbage")
		assert.False(t, ok)
	})
	t.Run("empty", func(t *testing.T) {
		_, ok := s.Verify("")
		assert.False(t, ok)
	})
	t.Run("modified payload", func(t *testing.T) {
		_, signature, _ := strings.Cut(token, ".")
		evil := base64.RawURLEncoding.EncodeToString(
			[]byte(`{"username":"admin","expires":"2100-01-01T00:00:00Z"}`),
		)
		_, ok := s.Verify(evil + "." + signature)
		assert.False(t, ok)
	})
	t.Run("modified signature", func(t *testing.T) {
		payloadEnc, _, _ := strings.Cut(token, ".")
		_, ok := s.Verify(payloadEnc + "." + "AAAA")
		assert.False(t, ok)
	})
	t.Run("wrong key", func(t *testing.T) {
		other := &TokenService{secret: []byte("different secret"), ttl: time.Hour}
		_, ok := other.Verify(token)
		assert.False(t, ok)
	})
}

func TestTokenExpiry(t *testing.T) {
	s := &TokenService{secret: []byte("test secret"), ttl: -time.Minute}
	token := s.Issue("alice")

	_, ok := s.Verify(token)
	assert.False(t, ok)
}
