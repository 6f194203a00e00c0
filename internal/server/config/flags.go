package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-h string   HTTP/websocket bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN, or "memory"
//	-l string   log level
//	-m int      maintenance interval, minutes (0 disables)
//	-q int      per-session live-update buffer
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket for archives
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-h", "-d", "-l", "-m", "-q", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN or \"memory\"")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	maintenance := fs.Int("m", int(config.MaintenanceInterval.Minutes()), "maintenance interval (in minutes)")

	fs.IntVar(&config.SubscriberBuffer, "q", config.SubscriberBuffer, "live-update buffer per session")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -m overrides, so sub-minute values from a file survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "m" {
			config.MaintenanceInterval = time.Duration(*maintenance) * time.Minute
		}
	})
}
