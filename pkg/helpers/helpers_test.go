package helpers

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOTPCodeFormat(t *testing.T) {
	sixDigits := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)

	assert.True(t, CompareHashAndPassword(hash, "pw123456"))
	assert.False(t, CompareHashAndPassword(hash, "pw1234567"))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("testsecret", time.Hour)

	token, exp, err := m.GenerateToken("u-1", "sid-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("testsecret", -time.Minute)

	token, _, err := m.GenerateToken("u-1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	require.Error(t, err)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateToken("u-1", "sid-1")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ParseToken(token)
	require.Error(t, err)
}

func TestKeySignupOTP(t *testing.T) {
	assert.Equal(t, "signup:otp:a@x.com", KeySignupOTP("a@x.com"))
}
