package config

import (
	"strconv"
	"time"
)

const envPrefix = "CROWDBID_"

// parseEnv overlays CROWDBID_* variables. Malformed numbers and durations
// are ignored so that a typo in the environment does not mask the file and
// flag settings.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("LOG_LEVEL", &config.LogLevel)
	dur("MAINTENANCE_INTERVAL", &config.MaintenanceInterval)
	dur("AUCTION_LIFETIME", &config.AuctionLifetime)
	num("SUBSCRIBER_BUFFER", &config.SubscriberBuffer)
	num("TOKEN_CACHE_SIZE", &config.TokenCacheSize)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}
