// Command authserver serves local and OAuth2 sign-in and issues bearer tokens
// for the tier-list services.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/modules/account"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/authz"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/config"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/httpserver"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/jwt"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/mongo"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/oauth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/password"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/ratelimiter"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/redis"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/svc/userstore"
)

const (
	storeMongo  = "mongo"
	storeMemory = "memory"
)

type appConfig struct {
	DefaultRole    string `env:"AUTH_DEFAULT_ROLE" envDefault:"USER"`
	BcryptCost     int    `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	Store          string `env:"AUTH_STORE" envDefault:"mongo"`
	PolicyFile     string `env:"AUTH_POLICY_FILE"`
	UseRedis       bool   `env:"AUTH_USE_REDIS" envDefault:"false"`
	TrustProxy     bool   `env:"AUTH_TRUST_PROXY" envDefault:"false"`
	FrontendURL    string `env:"FRONTEND_REDIRECT_URL" envDefault:"http://localhost:3000/oauth2/redirect"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "authserver:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	logCfg, err := config.Load[logger.Config]()
	if err != nil {
		return fmt.Errorf("load logger config: %w", err)
	}
	logOpts, err := logCfg.Options()
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts, logger.WithContextExtractors(account.RequestIDExtractor))...)
	logger.SetAsDefault(log)

	app, err := config.Load[appConfig]()
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	log = log.With(slog.String("version", app.ServiceVersion))

	jwtCfg, err := config.Load[jwt.Config]()
	if err != nil {
		return fmt.Errorf("load jwt config: %w", err)
	}
	tokens, err := jwt.New(jwtCfg)
	if err != nil {
		return err
	}

	health := map[string]httpserver.Check{}

	store, closeStore, err := openStore(ctx, app.Store, log, health)
	if err != nil {
		return err
	}
	defer closeStore()

	states, limiterStore, closeRedis, err := openStateStores(ctx, app.UseRedis, health)
	if err != nil {
		return err
	}
	defer closeRedis()

	policy, err := loadPolicy(app.PolicyFile)
	if err != nil {
		return err
	}

	hasher := password.New(password.WithCost(app.BcryptCost))
	authenticator := auth.NewAuthenticator(store, hasher, auth.WithAuthenticatorLogger(log))
	sessions := auth.NewSessions(tokens, auth.WithSessionAuthenticator(authenticator))
	registrar := auth.NewRegistrar(store, hasher,
		auth.WithRegistrarLogger(log),
		auth.WithDefaultRole(app.DefaultRole),
	)
	reconciler := auth.NewReconciler(store,
		auth.WithReconcilerLogger(log),
		auth.WithReconcilerDefaultRole(app.DefaultRole),
	)

	providers, err := oauthProviders(states, log)
	if err != nil {
		return err
	}

	limitCfg, err := config.Load[ratelimiter.Config]()
	if err != nil {
		return fmt.Errorf("load rate limit config: %w", err)
	}
	var limiter *ratelimiter.Bucket
	if limitCfg.Enabled() {
		if limiter, err = ratelimiter.NewBucket(limiterStore, limitCfg); err != nil {
			return err
		}
	}

	handler := account.NewHandler(account.Deps{
		Registrar:  registrar,
		Sessions:   sessions,
		Users:      store,
		Reconciler: reconciler,
		Providers:  providers,
	},
		account.WithLogger(log),
		account.WithFrontendRedirectURL(app.FrontendURL),
	)

	router := account.NewRouter(account.RouterOptions{
		Handler:    handler,
		Verifier:   tokens,
		Policy:     policy,
		Logger:     log,
		Health:     health,
		Limiter:    limiter,
		TrustProxy: app.TrustProxy,
	})

	httpCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return fmt.Errorf("load http config: %w", err)
	}
	log.InfoContext(ctx, "starting authserver",
		slog.String("store", app.Store),
		slog.Any("providers", providers.Providers()),
		slog.Bool("redis", app.UseRedis),
	)
	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
}

func openStore(ctx context.Context, kind string, log *slog.Logger, health map[string]httpserver.Check) (auth.Store, func(), error) {
	switch strings.ToLower(kind) {
	case storeMemory:
		log.WarnContext(ctx, "using in-memory user store, accounts are lost on restart")
		return userstore.NewMemory(), func() {}, nil

	case storeMongo:
		cfg, err := config.Load[mongo.Config]()
		if err != nil {
			return nil, nil, fmt.Errorf("load mongo config: %w", err)
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client := db.Client()
		closeFn := func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }

		store := userstore.NewMongo(db, userstore.WithMongoLogger(log))
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure user indexes: %w", err)
		}
		health["mongo"] = mongo.Healthcheck(client)
		return store, closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown AUTH_STORE %q", kind)
}

// openStateStores returns the OAuth state store and the rate limit store,
// shared through Redis when enabled.
func openStateStores(ctx context.Context, useRedis bool, health map[string]httpserver.Check) (oauth.StateStore, ratelimiter.Store, func(), error) {
	if !useRedis {
		limits := ratelimiter.NewMemoryStore()
		return oauth.NewMemoryStateStore(), limits, limits.Close, nil
	}

	cfg, err := config.Load[redis.Config]()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load redis config: %w", err)
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	health["redis"] = redis.Healthcheck(client)
	return oauth.NewRedisStateStore(client, cfg.StatePrefix),
		ratelimiter.NewRedisStore(client, "authserver:ratelimit:"),
		func() { _ = client.Close() },
		nil
}

func loadPolicy(path string) (*authz.Policy, error) {
	if path == "" {
		return authz.DefaultPolicy(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()
	return authz.LoadYAML(f)
}

func oauthProviders(states oauth.StateStore, log *slog.Logger) (*oauth.Registry, error) {
	google, err := config.Load[oauth.GoogleConfig]()
	if err != nil {
		return nil, fmt.Errorf("load google oauth config: %w", err)
	}
	github, err := config.Load[oauth.GitHubConfig]()
	if err != nil {
		return nil, fmt.Errorf("load github oauth config: %w", err)
	}

	var flows []*oauth.Flow
	if google.Enabled() {
		flows = append(flows, oauth.NewFlow(oauth.NewGoogleAdapter(google), states,
			oauth.WithLogger(log),
			oauth.WithStateTTL(google.StateTTL),
			oauth.WithVerifiedOnly(google.VerifiedOnly),
		))
	}
	if github.Enabled() {
		flows = append(flows, oauth.NewFlow(oauth.NewGitHubAdapter(github), states,
			oauth.WithLogger(log),
			oauth.WithStateTTL(github.StateTTL),
			oauth.WithVerifiedOnly(github.VerifiedOnly),
		))
	}
	if len(flows) == 0 {
		log.Warn("no oauth provider configured")
	}
	return oauth.NewRegistry(flows...), nil
}

