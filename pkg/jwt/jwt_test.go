package jwt_test

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newService(t *testing.T, ttl time.Duration) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(jwt.Config{Secret: testSecret, TTL: ttl})
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.New(jwt.Config{})
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.New(jwt.Config{Secret: "short"})
		require.ErrorIs(t, err, jwt.ErrInvalidSigningKey)
	})

	t.Run("negative ttl", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.New(jwt.Config{Secret: testSecret, TTL: -time.Second})
		require.ErrorIs(t, err, jwt.ErrInvalidTTL)
	})

	t.Run("default ttl", func(t *testing.T) {
		t.Parallel()
		svc, err := jwt.New(jwt.Config{Secret: testSecret})
		require.NoError(t, err)
		assert.Equal(t, jwt.DefaultTTL, svc.TTL())
	})
}

func TestIssueVerify(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)

		token, issued, err := svc.Issue("alice@example.com", []string{"USER", "ADMIN"}, t0)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(token, "."))
		assert.NotEmpty(t, issued.ID)

		claims, err := svc.Verify(token, t0.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Subject)
		assert.Equal(t, []string{"USER", "ADMIN"}, claims.Roles)
		assert.Equal(t, t0.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, t0.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("sub-second issue time keeps full lifetime", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, 2*time.Second)
		start := t0.Add(900 * time.Millisecond)

		token, _, err := svc.Issue("bob@example.com", nil, start)
		require.NoError(t, err)

		_, err = svc.Verify(token, start.Add(time.Second))
		require.NoError(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		_, _, err := svc.Issue("", nil, t0)
		require.ErrorIs(t, err, jwt.ErrMissingSubject)
	})

	t.Run("expired at exp", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		token, _, err := svc.Issue("alice@example.com", nil, t0)
		require.NoError(t, err)

		_, err = svc.Verify(token, t0.Add(time.Hour))
		require.ErrorIs(t, err, jwt.ErrExpiredToken)

		_, err = svc.Verify(token, t0.Add(48*time.Hour))
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New(jwt.Config{Secret: strings.Repeat("x", 32), TTL: time.Hour})
		require.NoError(t, err)
		token, _, err := other.Issue("alice@example.com", nil, t0)
		require.NoError(t, err)

		_, err = newService(t, time.Hour).Verify(token, t0.Add(time.Second))
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("expired wins over bad signature", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New(jwt.Config{Secret: strings.Repeat("x", 32), TTL: time.Hour})
		require.NoError(t, err)
		token, _, err := other.Issue("alice@example.com", nil, t0)
		require.NoError(t, err)

		_, err = newService(t, time.Hour).Verify(token, t0.Add(2*time.Hour))
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		token, _, err := svc.Issue("alice@example.com", []string{"USER"}, t0)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forged := `{"sub":"alice@example.com","roles":["ADMIN"],"exp":` +
			strconv.FormatInt(t0.Add(time.Hour).Unix(), 10) + `}`
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

		_, err = svc.Verify(strings.Join(parts, "."), t0.Add(time.Second))
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		claims := gojwt.MapClaims{"sub": "alice@example.com", "exp": t0.Add(time.Hour).Unix()}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).
			SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(token, t0.Add(time.Second))
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("missing exp is malformed", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"sub": "alice@example.com"}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token, t0)
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("missing sub is malformed", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, time.Hour)
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"exp": t0.Add(time.Hour).Unix()}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token, t0)
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		t.Parallel()
		issuerA, err := jwt.New(jwt.Config{Secret: testSecret, TTL: time.Hour, Issuer: "a"})
		require.NoError(t, err)
		issuerB, err := jwt.New(jwt.Config{Secret: testSecret, TTL: time.Hour, Issuer: "b"})
		require.NoError(t, err)

		token, _, err := issuerA.Issue("alice@example.com", nil, t0)
		require.NoError(t, err)

		_, err = issuerA.Verify(token, t0.Add(time.Second))
		require.NoError(t, err)
		_, err = issuerB.Verify(token, t0.Add(time.Second))
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	svc := newService(t, time.Hour)
	cases := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   "abc.def",
		"four segments":  "a.b.c.d",
		"bad base64":     "!!!.@@@.###",
		"non-json parts": base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.sig",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Verify(token, time.Now())
			require.ErrorIs(t, err, jwt.ErrMalformedToken)
		})
	}
}
