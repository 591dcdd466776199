package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		header string
		want   string
		found  bool
	}{
		{name: "standard header", header: "Bearer abc.def.ghi", want: "abc.def.ghi", found: true},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi", found: true},
		{name: "surrounding spaces", header: "Bearer   abc.def.ghi  ", want: "abc.def.ghi", found: true},
		{name: "missing header", header: "", found: false},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", found: false},
		{name: "empty token", header: "Bearer ", found: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			token, found := ExtractBearerToken(r)
			require.Equal(t, tc.found, found)
			if tc.found {
				require.Equal(t, tc.want, token)
			}
		})
	}
}
