// Package config provides hierarchical configuration loading for TaskRelay.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"time"

	"github.com/Strob0t/TaskRelay/internal/domain/room"
)

// Config holds all runtime configuration for the relay.
type Config struct {
	Server  Server  `yaml:"server"`
	Wrike   Wrike   `yaml:"wrike"`
	Webex   Webex   `yaml:"webex"`
	Fields  Fields  `yaml:"fields"`
	Routing Routing `yaml:"routing"`
	Logging Logging `yaml:"logging"`
	Breaker Breaker `yaml:"breaker"`
	Cache   Cache   `yaml:"cache"`
	NATS    NATS    `yaml:"nats"`
	OTEL    OTEL    `yaml:"otel"`

	// Rooms is the resolved folder-to-room table. It is built by Load from
	// exactly one mapping source and never changes afterwards.
	Rooms room.Table `yaml:"-"`
	// RoomSource names the mapping source Rooms was built from.
	RoomSource string `yaml:"-"`
}

// Server holds inbound HTTP configuration.
type Server struct {
	Port           string        `yaml:"port"`
	BodyLimit      int64         `yaml:"body_limit"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LiveFeed       bool          `yaml:"live_feed"`
}

// Wrike holds the task source API configuration.
type Wrike struct {
	BaseURL          string        `yaml:"base_url"`
	Token            string        `yaml:"token"`
	PermalinkBase    string        `yaml:"permalink_base"`
	Timeout          time.Duration `yaml:"timeout"`
	ResolveAssignees bool          `yaml:"resolve_assignees"`
}

// Webex holds the messaging API configuration.
type Webex struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`

	// MaxConcurrent caps in-flight sends; 0 disables the cap.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Fields holds the Wrike custom-field ids rendered in notifications.
// An empty id disables the field.
type Fields struct {
	TaskType   string `yaml:"task_type"`
	Priority   string `yaml:"priority"`
	Technology string `yaml:"technology"`
	Customer   string `yaml:"customer"`
}

// Routing holds the folder-to-room mapping sources.
type Routing struct {
	MappingFile     string                `yaml:"mapping_file"`
	MappingJSON     string                `yaml:"-"`
	MappingList     string                `yaml:"-"`
	Rooms           map[string]room.Entry `yaml:"rooms"`
	CustomerFolders []string              `yaml:"customer_folders"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for outbound APIs.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Cache holds contact-name cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	TTL         time.Duration `yaml:"ttl"`
	L2Bucket    string        `yaml:"l2_bucket"`
}

// NATS holds the optional outcome publisher configuration. An empty URL
// disables publishing and the L2 cache.
type NATS struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// OTEL holds OpenTelemetry export configuration. An empty endpoint keeps
// the global no-op providers.
type OTEL struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// CustomerFolderSet returns Routing.CustomerFolders as a lookup set.
func (c *Config) CustomerFolderSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Routing.CustomerFolders))
	for _, id := range c.Routing.CustomerFolders {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:           "8000",
			BodyLimit:      1 << 20,
			RequestTimeout: 30 * time.Second,
			LiveFeed:       true,
		},
		Wrike: Wrike{
			BaseURL:          "https://www.wrike.com/api/v4",
			PermalinkBase:    "https://www.wrike.com/open.htm?id=",
			Timeout:          10 * time.Second,
			ResolveAssignees: true,
		},
		Webex: Webex{
			BaseURL:       "https://webexapis.com/v1",
			Timeout:       10 * time.Second,
			MaxConcurrent: 8,
		},
		Logging: Logging{
			Level:   "info",
			Service: "taskrelay",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Cache: Cache{
			L1MaxSizeMB: 8,
			TTL:         15 * time.Minute,
			L2Bucket:    "TASKRELAY_CONTACTS",
		},
		NATS: NATS{
			SubjectPrefix: "taskrelay.relay",
		},
		OTEL: OTEL{
			Insecure: true,
		},
	}
}
