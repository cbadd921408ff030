package redis

import "time"

// Config describes the Redis connection used for shared OAuth state.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	StatePrefix    string        `env:"REDIS_OAUTH_STATE_PREFIX" envDefault:"authserver:oauth:state:"`
}
