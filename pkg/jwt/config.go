package jwt

import "time"

// MinSecretLength is the smallest accepted signing secret, in bytes (256 bits for HS256).
const MinSecretLength = 32

// DefaultTTL is the session token lifetime used when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

// Config holds the token codec settings.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`     // HMAC secret shared by every instance
	TTL    time.Duration `env:"JWT_TTL" envDefault:"24h"` // lifetime of issued tokens
	Issuer string        `env:"JWT_ISSUER"`               // optional iss claim, checked on verify when set
}
