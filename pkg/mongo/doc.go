// Package mongo connects the user store to MongoDB.
//
// Config is read from the environment (MONGODB_URL, MONGODB_DATABASE and the
// pool and retry settings). New retries the initial connect and ping, which
// covers the common case of the server starting after the application in
// docker compose.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	users := userstore.NewMongo(db)
//
// Healthcheck returns a probe for the /health endpoint.
package mongo
