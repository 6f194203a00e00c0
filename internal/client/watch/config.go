package watch

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/flagx"
	"github.com/dmitrijs2005/crowdbid/internal/timex"
	"github.com/pelletier/go-toml/v2"
)

// Config holds runtime settings for the watcher.
type Config struct {
	ServerEndpointAddr string
	Token              string
	Viewer             string
	ReconnectDelay     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ReconnectDelay = 2 * time.Second
}

// LoadConfig constructs a Config from args. Later sources take precedence
// over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FileConfig is the on-disk shape of the watcher configuration.
type FileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" toml:"server_endpoint_addr"`
	Token              string         `json:"token" toml:"token"`
	Viewer             string         `json:"viewer" toml:"viewer"`
	ReconnectDelay     timex.Duration `json:"reconnect_delay" toml:"reconnect_delay"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return err
	}

	if fc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	}
	if fc.Token != "" {
		cfg.Token = fc.Token
	}
	if fc.Viewer != "" {
		cfg.Viewer = fc.Viewer
	}
	if fc.ReconnectDelay.Duration > 0 {
		cfg.ReconnectDelay = fc.ReconnectDelay.Duration
	}
	return nil
}

func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-v", "-r"})

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "auction token")
	fs.StringVar(&cfg.Viewer, "v", cfg.Viewer, "viewer name")
	delay := fs.Int("r", int(cfg.ReconnectDelay.Seconds()), "reconnect delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" && *delay > 0 {
			cfg.ReconnectDelay = time.Duration(*delay) * time.Second
		}
	})
	return nil
}
