// Package logger builds the service's *slog.Logger and supplies attribute
// helpers so keys stay consistent across packages.
//
//	cfg, _ := config.Load[logger.Config]()
//	opts, err := cfg.Options()
//	if err != nil {
//		return err
//	}
//	log := logger.New(append(opts,
//		logger.WithContextExtractors(requestIDFromContext),
//	)...)
//
//	log.WarnContext(ctx, "linking external identity",
//		logger.Component("oauth_reconciler"),
//		logger.UserID(u.ID),
//		logger.Provider("google"),
//	)
//
// Attribute helpers return an empty slog.Attr for empty values, which slog omits.
package logger
