package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// Budget defaults
	DefaultDailyBudget        = 50.0
	DefaultMonthlyBudget      = 1000.0
	DefaultAlertThreshold     = 0.80
	DefaultEmergencyThreshold = 0.95
	DefaultUserDailyLimit     = 5.0
	DefaultUserMonthlyLimit   = 50.0

	// Provider defaults
	DefaultProviderTimeout      = 30 * time.Second
	DefaultProviderRetryBackoff = time.Second

	// Routing defaults
	DefaultSimpleQueryLength = 100
	DefaultMaxTokens         = 1000

	// Scheduler defaults
	DefaultProcessInterval       = 10 * time.Second
	DefaultCleanupInterval       = 60 * time.Second
	DefaultPriceTrackingSchedule = "@every 1h"
	DefaultTaskTimeout           = 30 * time.Second

	// Ledger defaults
	DefaultLedgerBackend     = "memory"
	DefaultLedgerCapacity    = 1000
	DefaultSQLitePath        = "data/usage.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisKey          = "sentinel:usage"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "sentinel"
	DefaultMetricsSubsystem = "engine"
	DefaultTracingService   = "sentinel"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
)

// Provider names known to the engine.
const (
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
	ProviderOpenRouter = "openrouter"
)

// providerPricing holds the default price of each known provider.
var providerPricing = map[string]struct {
	per1K      float64
	perRequest float64
}{
	ProviderOpenAI:     {per1K: 0.03},
	ProviderPerplexity: {per1K: 0.001, perRequest: 0.005},
	ProviderOpenRouter: {per1K: 0.002},
}

// defaultOpenRouterModels are the default openrouter model tiers.
var defaultOpenRouterModels = map[string]string{
	"cheap": "meta-llama/llama-3.1-8b-instruct",
	"mid":   "anthropic/claude-3-haiku",
}

// DefaultComplexKeywords mark compliance queries that need deeper analysis.
var DefaultComplexKeywords = []string{
	"visa", "overstay", "residence permit", "work permit", "multiple entries",
	"schengen calculation", "legal", "appeal", "border", "dual citizenship",
}

// DefaultHighValueKeywords mark planning queries worth the premium tier.
var DefaultHighValueKeywords = []string{
	"itinerary", "multi-city", "business trip", "relocation", "extended stay",
	"family trip", "honeymoon", "optimize",
}

// DefaultRedactKeys are masked in log output.
var DefaultRedactKeys = []string{"api_key", "authorization", "password"}

// NewDefaultConfig returns a configuration with every default applied and
// the three providers pointed at a local gateway.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			ProviderOpenAI:     {BaseURL: "http://127.0.0.1:3000"},
			ProviderPerplexity: {BaseURL: "http://127.0.0.1:3000"},
			ProviderOpenRouter: {BaseURL: "http://127.0.0.1:3000"},
		},
	}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean fields are left untouched since false is a valid setting.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyBudgetDefaults(&cfg.Budget)
	applyProviderDefaults(cfg.Providers)
	applyRoutingDefaults(&cfg.Routing)
	applySchedulerDefaults(&cfg.Scheduler)
	applyLedgerDefaults(&cfg.Ledger)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyBudgetDefaults(cfg *BudgetConfig) {
	if cfg.DailyBudget == 0 {
		cfg.DailyBudget = DefaultDailyBudget
	}
	if cfg.MonthlyBudget == 0 {
		cfg.MonthlyBudget = DefaultMonthlyBudget
	}
	if cfg.AlertThreshold == 0 {
		cfg.AlertThreshold = DefaultAlertThreshold
	}
	if cfg.EmergencyThreshold == 0 {
		cfg.EmergencyThreshold = DefaultEmergencyThreshold
	}
	if cfg.UserDailyLimit == 0 {
		cfg.UserDailyLimit = DefaultUserDailyLimit
	}
	if cfg.UserMonthlyLimit == 0 {
		cfg.UserMonthlyLimit = DefaultUserMonthlyLimit
	}
}

func applyProviderDefaults(providers map[string]ProviderConfig) {
	for name, p := range providers {
		if p.Route == "" {
			p.Route = "/api/ai/" + name
		}
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		if p.RetryBackoff == 0 {
			p.RetryBackoff = DefaultProviderRetryBackoff
		}
		if price, ok := providerPricing[name]; ok {
			if p.CostPer1KTokens == 0 {
				p.CostPer1KTokens = price.per1K
			}
			if p.CostPerRequest == 0 {
				p.CostPerRequest = price.perRequest
			}
		}
		if name == ProviderOpenRouter && len(p.Models) == 0 {
			p.Models = make(map[string]string, len(defaultOpenRouterModels))
			for tier, model := range defaultOpenRouterModels {
				p.Models[tier] = model
			}
		}
		providers[name] = p
	}
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if len(cfg.ComplexKeywords) == 0 {
		cfg.ComplexKeywords = append([]string(nil), DefaultComplexKeywords...)
	}
	if len(cfg.HighValueKeywords) == 0 {
		cfg.HighValueKeywords = append([]string(nil), DefaultHighValueKeywords...)
	}
	if cfg.SimpleQueryLength == 0 {
		cfg.SimpleQueryLength = DefaultSimpleQueryLength
	}
	if cfg.DefaultMaxTokens == 0 {
		cfg.DefaultMaxTokens = DefaultMaxTokens
	}
}

func applySchedulerDefaults(cfg *SchedulerConfig) {
	if cfg.ProcessInterval == 0 {
		cfg.ProcessInterval = DefaultProcessInterval
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.PriceTrackingSchedule == "" {
		cfg.PriceTrackingSchedule = DefaultPriceTrackingSchedule
	}
	if cfg.TaskTimeout == 0 {
		cfg.TaskTimeout = DefaultTaskTimeout
	}
}

func applyLedgerDefaults(cfg *LedgerConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultLedgerBackend
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultLedgerCapacity
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = DefaultRedisKey
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if len(cfg.Logging.RedactKeys) == 0 {
		cfg.Logging.RedactKeys = append([]string(nil), DefaultRedactKeys...)
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.Sampler == "ratio" && cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingRatio
	}
}
