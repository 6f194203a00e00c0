package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/crowdbid/internal/flagx"
	"github.com/dmitrijs2005/crowdbid/internal/timex"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// strings such as "30m". Zero values leave the current setting untouched.
type FileConfig struct {
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP    string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN         string         `json:"database_dsn" toml:"database_dsn"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
	MaintenanceInterval timex.Duration `json:"maintenance_interval" toml:"maintenance_interval"`
	AuctionLifetime     timex.Duration `json:"auction_lifetime" toml:"auction_lifetime"`
	SubscriberBuffer    int            `json:"subscriber_buffer" toml:"subscriber_buffer"`
	TokenCacheSize      int            `json:"token_cache_size" toml:"token_cache_size"`
	S3RootUser          string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region            string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
}

// parseFile overlays the file named by -c/-config. Files ending in .toml are
// decoded as TOML, everything else as JSON. A missing or malformed file
// panics: the server must not start on a config it could not read.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.LogLevel, fc.LogLevel)
	if fc.MaintenanceInterval.Duration != 0 {
		config.MaintenanceInterval = fc.MaintenanceInterval.Duration
	}
	if fc.AuctionLifetime.Duration != 0 {
		config.AuctionLifetime = fc.AuctionLifetime.Duration
	}
	if fc.SubscriberBuffer > 0 {
		config.SubscriberBuffer = fc.SubscriberBuffer
	}
	if fc.TokenCacheSize > 0 {
		config.TokenCacheSize = fc.TokenCacheSize
	}
	setString(&config.S3RootUser, fc.S3RootUser)
	setString(&config.S3RootPassword, fc.S3RootPassword)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
