package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/auth/signin", "/api/auth/signin", true},
		{"/api/auth/signin", "/api/auth/signin/", true},
		{"/api/auth/signin", "/api/auth/signup", false},
		{"/api/auth/signin", "/api/auth", false},
		{"/api/users/*", "/api/users/42", true},
		{"/api/users/*", "/api/users", false},
		{"/api/users/*", "/api/users/42/roles", false},
		{"/api/users/{id}", "/api/users/42", true},
		{"/api/users/{id}/roles", "/api/users/42/roles", true},
		{"/oauth2/**", "/oauth2", true},
		{"/oauth2/**", "/oauth2/authorization/google", true},
		{"/oauth2/**", "/oauth", false},
		{"/**", "/", true},
		{"/**", "/anything/at/all", true},
		{"/", "/", true},
		{"/", "/x", false},
		{"/static/*.css", "/static/site.css", true},
		{"/static/*.css", "/static/site.js", false},
		{"/api/a", "/api/b/../a", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			p, err := compilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.match(tt.path))
		})
	}
}

func TestCompilePatternErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "api/no-slash", "/a/**/b", "/a/{}", "/a/[*"} {
		_, err := compilePattern(raw)
		assert.Error(t, err, raw)
	}
}
