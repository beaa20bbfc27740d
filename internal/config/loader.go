package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "taskrelay.yaml"

// envConfigPath overrides DefaultConfigFile when set.
const envConfigPath = "TASKRELAY_CONFIG"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv(envConfigPath); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	return load(yamlPath, CLIFlags{})
}

// LoadWithCLI extends the hierarchy with command-line flags on top:
// defaults < YAML < ENV < CLI. It returns the YAML path that was used.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := DefaultConfigFile
	if p := os.Getenv(envConfigPath); p != "" {
		path = p
	}
	if flags.ConfigPath != nil && *flags.ConfigPath != "" {
		path = *flags.ConfigPath
	}
	cfg, err := load(path, flags)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func load(yamlPath string, flags CLIFlags) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := loadRooms(&cfg); err != nil {
		return nil, fmt.Errorf("config rooms: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Port, "TASKRELAY_PORT")
	setInt64(&cfg.Server.BodyLimit, "TASKRELAY_BODY_LIMIT")
	setDuration(&cfg.Server.RequestTimeout, "TASKRELAY_REQUEST_TIMEOUT")
	setBool(&cfg.Server.LiveFeed, "TASKRELAY_LIVE_FEED")

	// Wrike
	setString(&cfg.Wrike.Token, "WRIKE_TOKEN")
	setString(&cfg.Wrike.BaseURL, "WRIKE_API_URL")
	setString(&cfg.Wrike.PermalinkBase, "WRIKE_PERMALINK_BASE")
	setDuration(&cfg.Wrike.Timeout, "WRIKE_TIMEOUT")
	setBool(&cfg.Wrike.ResolveAssignees, "TASKRELAY_RESOLVE_ASSIGNEES")

	// Webex
	setString(&cfg.Webex.Token, "WEBEX_TOKEN")
	setString(&cfg.Webex.BaseURL, "WEBEX_API_URL")
	setDuration(&cfg.Webex.Timeout, "WEBEX_TIMEOUT")
	setInt(&cfg.Webex.MaxConcurrent, "WEBEX_MAX_CONCURRENT")

	// Custom fields
	setString(&cfg.Fields.TaskType, "WRIKE_FIELD_TASK_TYPE")
	setString(&cfg.Fields.Priority, "WRIKE_FIELD_PRIORITY")
	setString(&cfg.Fields.Technology, "WRIKE_FIELD_TECHNOLOGY")
	setString(&cfg.Fields.Customer, "WRIKE_FIELD_CUSTOMER")

	// Routing
	setString(&cfg.Routing.MappingFile, "TASKRELAY_ROOM_MAP_FILE")
	setString(&cfg.Routing.MappingJSON, "TASKRELAY_ROOM_MAP_JSON")
	setString(&cfg.Routing.MappingList, "TASKRELAY_ROOM_MAP")
	setList(&cfg.Routing.CustomerFolders, "TASKRELAY_CUSTOMER_FOLDERS")

	setString(&cfg.Logging.Level, "TASKRELAY_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TASKRELAY_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TASKRELAY_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "TASKRELAY_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TASKRELAY_BREAKER_TIMEOUT")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "TASKRELAY_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "TASKRELAY_CACHE_TTL")
	setString(&cfg.Cache.L2Bucket, "TASKRELAY_CACHE_L2_BUCKET")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.SubjectPrefix, "TASKRELAY_NATS_SUBJECT_PREFIX")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "TASKRELAY_OTEL_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.BodyLimit < 1 {
		return errors.New("server.body_limit must be >= 1")
	}
	if cfg.Wrike.BaseURL == "" {
		return errors.New("wrike.base_url is required")
	}
	if cfg.Webex.BaseURL == "" {
		return errors.New("webex.base_url is required")
	}
	if cfg.Wrike.Timeout <= 0 {
		return errors.New("wrike.timeout must be > 0")
	}
	if cfg.Webex.Timeout <= 0 {
		return errors.New("webex.timeout must be > 0")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be > 0")
	}
	// Upstream calls run in sequence under the request timeout; it must
	// outlast them so a slow upstream yields 502 rather than 504.
	if cfg.Server.RequestTimeout <= cfg.Wrike.Timeout+cfg.Webex.Timeout {
		return errors.New("server.request_timeout must exceed wrike.timeout + webex.timeout")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rooms.Len() == 0 {
		return errors.New("routing: no folder-to-room mappings configured")
	}
	return nil
}

// CLIFlags holds command-line overrides. Nil fields were not given.
type CLIFlags struct {
	ConfigPath *string
	Port       *string
	LogLevel   *string
	NatsURL    *string
}

// ParseFlags parses serve flags from args.
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		configPath, port, logLevel, natsURL string
	)
	fs.StringVar(&configPath, "config", "", "path to YAML config file")
	fs.StringVar(&configPath, "c", "", "path to YAML config file (shorthand)")
	fs.StringVar(&port, "port", "", "HTTP listen port")
	fs.StringVar(&port, "p", "", "HTTP listen port (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&natsURL, "nats-url", "", "NATS server URL for outcome publishing")
	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, err
	}

	var flags CLIFlags
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			flags.ConfigPath = &configPath
		case "port", "p":
			flags.Port = &port
		case "log-level":
			flags.LogLevel = &logLevel
		case "nats-url":
			flags.NatsURL = &natsURL
		}
	})
	return flags, nil
}

// applyCLI overlays explicitly given flags onto cfg.
func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// setList splits a comma- or colon-delimited value into dst.
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ':' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
