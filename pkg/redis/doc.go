// Package redis connects to the Redis server that holds OAuth state when the
// auth server runs as more than one instance.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	states := oauth.NewRedisStateStore(client, cfg.StatePrefix)
//
// Healthcheck pings the server for the /health endpoint.
package redis
