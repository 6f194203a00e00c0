package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-h", "127.0.0.1:8081", "-d", "memory", "-l", "debug",
				"-m", "10", "-q", "32", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			expected: &Config{
				EndpointAddrGRPC:    "127.0.0.1:9090",
				EndpointAddrHTTP:    "127.0.0.1:8081",
				DatabaseDSN:         "memory",
				LogLevel:            "debug",
				MaintenanceInterval: 10 * time.Minute,
				SubscriberBuffer:    32,
				S3RootUser:          "user",
				S3RootPassword:      "password",
				S3Bucket:            "bucket",
				S3Region:            "us-west-1",
				S3BaseEndpoint:      "http://endpoint",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-z", "1"},
			expected: &Config{},
		},
		{
			name:        "bad integer panics",
			args:        []string{"-m", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_MaintenanceKeptWithoutFlag(t *testing.T) {
	c := &Config{MaintenanceInterval: 90 * time.Second}
	parseFlags(c, []string{"-a", ":1"})
	assert.Equal(t, 90*time.Second, c.MaintenanceInterval)
}
