package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/native-auth/init", "/native-auth/init"},
		{"/oauth2/callback?code=abc", "/oauth2/callback"},
		{"/fido/deregister/8b3f2f60-1234-4cde-9f00-aaaa00000001", "/fido/deregister/:param"},
		{"/fido/deregister/1234567890abcdef1234", "/fido/deregister/:param"},
		{"/fido/deregister/42", "/fido/deregister/:param"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, normalizePath(tc.in), "input %q", tc.in)
	}
}

func TestIsDynamicSegment(t *testing.T) {
	require.True(t, isDynamicSegment("8b3f2f60-1234-4cde-9f00-aaaa00000001"))
	require.True(t, isDynamicSegment("0123456789abcdef0123456789abcdef"))
	require.True(t, isDynamicSegment("42"))
	require.False(t, isDynamicSegment("registration-options"))
	require.False(t, isDynamicSegment("init"))
}
