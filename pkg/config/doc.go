// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Each package that needs
// settings declares its own struct with env tags (jwt.Config, mongo.Config,
// httpserver.Config...) and the binary loads them at startup:
//
//	jwtCfg, err := config.Load[jwt.Config]()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Values already present in the environment take precedence over .env files.
// Parse failures are joined to ErrParsingConfig.
package config
