package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/modules/account"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/httpserver"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/jwt"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/oauth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/password"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/svc/userstore"
)

const frontendURL = "http://frontend.test/oauth2/redirect"

type stubProvider struct {
	profile oauth.Profile
}

func (s *stubProvider) ProviderID() string { return auth.ProviderGoogle }

func (s *stubProvider) AuthURL(state string) (string, error) {
	return "https://accounts.test/authorize?state=" + url.QueryEscape(state), nil
}

func (s *stubProvider) ResolveProfile(_ context.Context, code string) (oauth.Profile, error) {
	if code != "good" {
		return oauth.Profile{}, oauth.ErrInvalidCode
	}
	return s.profile, nil
}

type testServer struct {
	router http.Handler
	store  auth.Store
	tokens *jwt.Service
	hasher *password.Hasher
}

func newTestServer(t *testing.T, store auth.Store, health map[string]httpserver.Check, configure ...func(*account.RouterOptions)) *testServer {
	t.Helper()
	if store == nil {
		store = userstore.NewMemory()
	}
	tokens, err := jwt.New(jwt.Config{Secret: "account-test-secret-with-32-bytes!!", TTL: time.Hour})
	require.NoError(t, err)
	hasher := password.New(password.WithCost(bcrypt.MinCost))

	provider := &stubProvider{profile: oauth.Profile{
		ProviderUserID: "g-1",
		Email:          "dana@example.com",
		EmailVerified:  true,
		Name:           "Dana",
	}}

	h := account.NewHandler(account.Deps{
		Registrar:  auth.NewRegistrar(store, hasher),
		Sessions:   auth.NewSessions(tokens, auth.WithSessionAuthenticator(auth.NewAuthenticator(store, hasher))),
		Users:      store,
		Reconciler: auth.NewReconciler(store),
		Providers:  oauth.NewRegistry(oauth.NewFlow(provider, oauth.NewMemoryStateStore())),
	}, account.WithFrontendRedirectURL(frontendURL))

	opts := account.RouterOptions{Handler: h, Verifier: tokens, Health: health}
	for _, fn := range configure {
		fn(&opts)
	}

	return &testServer{
		router: account.NewRouter(opts),
		store:  store,
		tokens: tokens,
		hasher: hasher,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// tokenFor issues a token for subject with roles without going through sign-in.
func (s *testServer) tokenFor(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	tok, _, err := s.tokens.Issue(subject, roles, time.Now())
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Data  json.RawMessage       `json:"data"`
	Error *account.ErrorDetail `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec)
	require.NotNil(t, env.Error, rec.Body.String())
	return env.Error.Code
}

// failingStore reports every operation as an infrastructure failure.
type failingStore struct{}

var errDown = auth.StoreUnavailable("test", context.DeadlineExceeded)

func (failingStore) FindByUsername(context.Context, string) (*auth.User, error) { return nil, errDown }
func (failingStore) FindByEmail(context.Context, string) (*auth.User, error)    { return nil, errDown }
func (failingStore) FindByProvider(context.Context, string, string) (*auth.User, error) {
	return nil, errDown
}
func (failingStore) ExistsByUsername(context.Context, string) (bool, error) { return false, errDown }
func (failingStore) ExistsByEmail(context.Context, string) (bool, error)    { return false, errDown }
func (failingStore) Save(context.Context, *auth.User) (*auth.User, error)   { return nil, errDown }
