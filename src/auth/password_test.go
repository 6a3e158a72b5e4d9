package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordRoundtrip(t *testing.T) {
	hashed := HashPassword("hunter12345")

	ok, err := CheckPassword("hunter12345", hashed)
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("hunter54321", hashed)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestPasswordStringRoundtrip(t *testing.T) {
	hashed := HashPassword("hunter12345")

	parsed, err := ParsePasswordString(hashed.String())
	assert.Nil(t, err)
	assert.Equal(t, hashed, parsed)

	ok, err := CheckPassword("hunter12345", parsed)
	assert.Nil(t, err)
	assert.True(t, ok)
}

func TestParsePasswordString(t *testing.T) {
	t.Run("bad format", func(t *testing.T) {
		_, err := ParsePasswordString("not a password string")
		assert.NotNil(t, err)
	})
	t.Run("unknown algorithm", func(t *testing.T) {
		parsed, err := ParsePasswordString("md5$$c2FsdA==$aGFzaA==")
		assert.Nil(t, err)
		_, err = CheckPassword("whatever", parsed)
		assert.NotNil(t, err)
	})
}

func TestHashUsesFreshSalt(t *testing.T) {
	a := HashPassword("hunter12345")
	b := HashPassword("hunter12345")
	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Hash, b.Hash)
}
