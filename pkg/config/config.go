// Package config provides the configuration system for magesync.
// A single Config structure describes one source store, one destination
// account and the sync rules between them.
//
// The configuration is organized into logical sections:
//   - Source: Magento host, credentials, API generation and store scoping
//   - Destination: WoowUp endpoint, API key and client limits
//   - Sync: statuses, branch naming, variations, categories and filter plugins
//   - Reliability: retry ceiling, base, unit and fault filter
//   - Logging and Observability: log level, tracing and metrics listener
//
// Example usage:
//
//	cfg, err := config.Load("magesync.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Source.Host)
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/errors"
)

const (
	// StatusComplete is the only order status imported when none is configured
	StatusComplete = "complete"
	// DefaultBranchName is used as the order branch when none is configured
	DefaultBranchName = "MAGENTO"
	// DefaultCategoriesField is the product attribute holding category ids
	DefaultCategoriesField = "category_ids"
	// DefaultURLField is the product attribute appended to the host to build URLs
	DefaultURLField = "url_path"
	// DefaultUserAgent is sent to the source; some hosts reject requests without it
	DefaultUserAgent = "PHPSoapClient"

	// RetryFilterNotYetAvailable retries only faults reporting a missing entity
	RetryFilterNotYetAvailable = "not_yet_available"
	// RetryFilterAny retries every transient fault
	RetryFilterAny = "any"
)

// Config is the root configuration of a sync run
type Config struct {
	Source        SourceConfig        `mapstructure:"source" yaml:"source" json:"source"`
	Destination   DestinationConfig   `mapstructure:"destination" yaml:"destination" json:"destination"`
	Sync          SyncConfig          `mapstructure:"sync" yaml:"sync" json:"sync"`
	Reliability   ReliabilityConfig   `mapstructure:"reliability" yaml:"reliability" json:"reliability"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging" json:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability" json:"observability"`
}

// SourceConfig describes the Magento store
type SourceConfig struct {
	// Host is the store base URL, also used to build product and category URLs
	Host string `mapstructure:"host" yaml:"host" json:"host" validate:"required,url"`
	// APIUser and APIKey are the web services credentials
	APIUser string `mapstructure:"apiuser" yaml:"apiuser" json:"apiuser" validate:"required"`
	APIKey  string `mapstructure:"apikey" yaml:"apikey" json:"apikey" validate:"required"`
	// Version selects the API generation: 1 (generic call dispatcher) or 2 (one method per operation)
	Version int `mapstructure:"version" yaml:"version" json:"version" validate:"required,oneof=1 2"`
	// EndpointPath is appended to Host to reach the RPC endpoint
	EndpointPath   string        `mapstructure:"endpoint_path" yaml:"endpoint_path" json:"endpoint_path"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`
	SessionTimeout time.Duration `mapstructure:"session_timeout" yaml:"session_timeout" json:"session_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	// Stores lists store ids to import one after another; empty means unscoped
	Stores []string `mapstructure:"stores" yaml:"stores" json:"stores"`
	// StoreID restricts orders to a single store
	StoreID string `mapstructure:"store_id" yaml:"store_id,omitempty" json:"store_id,omitempty"`
}

// DestinationConfig describes the WoowUp account
type DestinationConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url" json:"base_url" validate:"required,url"`
	// APIKey is the account key as issued by WoowUp. It is already encoded and
	// is sent unchanged in the Basic authorization header.
	APIKey      string        `mapstructure:"apikey" yaml:"apikey" json:"apikey" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`
	RateBurst   int           `mapstructure:"rate_burst" yaml:"rate_burst" json:"rate_burst" validate:"gte=0"`
	EnableHTTP2 bool          `mapstructure:"enable_http2" yaml:"enable_http2" json:"enable_http2"`
	PageSize    int           `mapstructure:"page_size" yaml:"page_size" json:"page_size" validate:"gte=0,lte=100"`
}

// FilterConfig enables one registered filter plugin
type FilterConfig struct {
	Name     string         `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Settings map[string]any `mapstructure:"settings" yaml:"settings,omitempty" json:"settings,omitempty"`
}

// SyncConfig holds the mapping rules
type SyncConfig struct {
	Categories      bool           `mapstructure:"categories" yaml:"categories" json:"categories"`
	Statuses        []string       `mapstructure:"status" yaml:"status" json:"status"`
	BranchName      string         `mapstructure:"branch_name" yaml:"branch_name" json:"branch_name"`
	Variations      []string       `mapstructure:"variations" yaml:"variations" json:"variations"`
	ProductTypes    []string       `mapstructure:"product_types" yaml:"product_types" json:"product_types"`
	CategoriesField string         `mapstructure:"categories_field" yaml:"categories_field" json:"categories_field"`
	URLField        string         `mapstructure:"url_field" yaml:"url_field" json:"url_field"`
	Filters         []FilterConfig `mapstructure:"filters" yaml:"filters" json:"filters" validate:"dive"`
}

// ReliabilityConfig controls the source retry wrapper
type ReliabilityConfig struct {
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts" json:"retry_attempts" validate:"gte=0"`
	RetryBase     float64       `mapstructure:"retry_base" yaml:"retry_base" json:"retry_base" validate:"gte=0"`
	RetryUnit     time.Duration `mapstructure:"retry_unit" yaml:"retry_unit" json:"retry_unit"`
	RetryFilter   string        `mapstructure:"retry_filter" yaml:"retry_filter" json:"retry_filter" validate:"omitempty,oneof=not_yet_available any"`
}

// LoggingConfig configures pkg/logger
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding" json:"encoding" validate:"omitempty,oneof=json console"`
	Development bool   `mapstructure:"development" yaml:"development" json:"development"`
}

// ObservabilityConfig configures tracing and the metrics listener
type ObservabilityConfig struct {
	Tracing     bool   `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr" json:"metrics_addr"`
	// ProgressInterval is how often a running import logs its progress
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval" json:"progress_interval"`
}

// Default returns a configuration with every optional field filled in
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Version:        2,
			EndpointPath:   "/api/jsonrpc",
			UserAgent:      DefaultUserAgent,
			SessionTimeout: 300 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		Destination: DestinationConfig{
			BaseURL:     "https://api.woowup.com/apiv3",
			Timeout:     30 * time.Second,
			RateLimit:   5,
			RateBurst:   5,
			EnableHTTP2: true,
			PageSize:    100,
		},
		Sync: SyncConfig{
			Statuses:        []string{StatusComplete},
			BranchName:      DefaultBranchName,
			Variations:      []string{},
			ProductTypes:    []string{"simple"},
			CategoriesField: DefaultCategoriesField,
			URLField:        DefaultURLField,
		},
		Reliability: ReliabilityConfig{
			RetryAttempts: 3,
			RetryBase:     2,
			RetryUnit:     time.Second,
			RetryFilter:   RetryFilterNotYetAvailable,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Observability: ObservabilityConfig{
			ProgressInterval: 30 * time.Second,
		},
	}
}

// ApplyDefaults fills empty optional fields from Default
func (c *Config) ApplyDefaults() {
	d := Default()

	c.Source.Host = strings.TrimRight(c.Source.Host, "/")
	if c.Source.EndpointPath == "" {
		c.Source.EndpointPath = d.Source.EndpointPath
	}
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = d.Source.UserAgent
	}
	if c.Source.SessionTimeout <= 0 {
		c.Source.SessionTimeout = d.Source.SessionTimeout
	}
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = d.Source.RequestTimeout
	}

	if c.Destination.BaseURL == "" {
		c.Destination.BaseURL = d.Destination.BaseURL
	}
	if c.Destination.Timeout <= 0 {
		c.Destination.Timeout = d.Destination.Timeout
	}
	if c.Destination.PageSize == 0 {
		c.Destination.PageSize = d.Destination.PageSize
	}

	if len(c.Sync.Statuses) == 0 {
		c.Sync.Statuses = d.Sync.Statuses
	}
	if c.Sync.BranchName == "" {
		c.Sync.BranchName = d.Sync.BranchName
	}
	if c.Sync.Variations == nil {
		c.Sync.Variations = []string{}
	}
	if len(c.Sync.ProductTypes) == 0 {
		c.Sync.ProductTypes = d.Sync.ProductTypes
	}
	if c.Sync.CategoriesField == "" {
		c.Sync.CategoriesField = d.Sync.CategoriesField
	}
	if c.Sync.URLField == "" {
		c.Sync.URLField = d.Sync.URLField
	}

	if c.Reliability.RetryAttempts == 0 {
		c.Reliability.RetryAttempts = d.Reliability.RetryAttempts
	}
	if c.Reliability.RetryBase == 0 {
		c.Reliability.RetryBase = d.Reliability.RetryBase
	}
	if c.Reliability.RetryUnit <= 0 {
		c.Reliability.RetryUnit = d.Reliability.RetryUnit
	}
	if c.Reliability.RetryFilter == "" {
		c.Reliability.RetryFilter = d.Reliability.RetryFilter
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = d.Logging.Encoding
	}
	if c.Observability.ProgressInterval <= 0 {
		c.Observability.ProgressInterval = d.Observability.ProgressInterval
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return errors.New(errors.ErrorTypeConfig,
				fmt.Sprintf("field '%s' failed '%s' check", first.Namespace(), first.Tag())).
				WithDetail("violations", len(fieldErrs))
		}
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

// Stores returns the store scopes to iterate; a single empty scope when none is configured
func (c *Config) Stores() []string {
	if len(c.Source.Stores) == 0 {
		return []string{""}
	}
	return c.Source.Stores
}

// FilterSpecs lists the enabled filter plugins in the order they apply
func (c *Config) FilterSpecs() []registry.Spec {
	specs := make([]registry.Spec, 0, len(c.Sync.Filters))
	for _, f := range c.Sync.Filters {
		specs = append(specs, registry.Spec{Name: f.Name, Settings: f.Settings})
	}
	return specs
}
