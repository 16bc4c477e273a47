package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("impresion3d")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	require.True(t, VerifyPassword("impresion3d", hash))
	require.False(t, VerifyPassword("otra-clave", hash))
	require.False(t, VerifyPassword("impresion3d", "not-a-hash"))

	other, err := HashPassword("impresion3d")
	require.NoError(t, err)
	require.NotEqual(t, hash, other, "соль должна отличаться")
}

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)
	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
}

func TestReferralCode(t *testing.T) {
	code := GenerateReferralCode()
	require.Len(t, code, 12)
	require.True(t, strings.HasPrefix(code, "LAB-"))
	require.Equal(t, code, NormalizeReferralCode("  "+strings.ToLower(code)+" "))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1200000, "1.200.000"},
		{-50500, "-50.500"},
	}
	for _, ts := range tests {
		require.Equal(t, ts.expected, FormatNumber(ts.in), "in=%d", ts.in)
	}
	require.Equal(t, "1 punto", FormatPoints(1))
	require.Equal(t, "1.200 puntos", FormatPoints(1200))
}

func TestErrorIdentity(t *testing.T) {
	wrapped := fmt.Errorf("review: %w", ErrReceiptAlreadyProcessed)
	require.True(t, errors.Is(wrapped, ErrReceiptAlreadyProcessed))
	require.False(t, errors.Is(wrapped, ErrDuplicateRedemption))

	var appErr *Error
	require.True(t, errors.As(wrapped, &appErr))
	require.Equal(t, KindInvalid, appErr.Kind)
	require.Equal(t, "receipt_already_processed", appErr.Code)
}
