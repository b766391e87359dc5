package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/juanalonso3/webwatch/internal/validation"
)

// ServerConfig covers the HTTP API surface.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	PublicAPIKeys  []string `mapstructure:"public_api_keys"`
	AdminAPIKeys   []string `mapstructure:"admin_api_keys"`
	PublicRPM      int      `mapstructure:"public_rpm"`
	PublicBurst    int      `mapstructure:"public_burst"`
	AdminRPM       int      `mapstructure:"admin_rpm"`
	AdminBurst     int      `mapstructure:"admin_burst"`
}

// CheckConfig tunes one batch run and the loop around it.
type CheckConfig struct {
	TargetsFile    string        `mapstructure:"targets_file"`
	Workers        int           `mapstructure:"workers"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
}

// PolicyConfig is the declarative form of the validation policy.
type PolicyConfig struct {
	HTTPSRequired    bool                    `mapstructure:"https_required"`
	RequiredHeaders  []string                `mapstructure:"required_headers"`
	ContentTypeAllow []string                `mapstructure:"content_type_allow"`
	HeaderEquals     []validation.HeaderRule `mapstructure:"header_equals"`
	HeaderContains   []validation.HeaderRule `mapstructure:"header_contains"`
	MaxBodyBytes     int64                   `mapstructure:"max_body_bytes"`
	BodyContainsAll  []string                `mapstructure:"body_contains_all"`
	BodyContainsAny  []string                `mapstructure:"body_contains_any"`
}

type LoggingConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	// Empty URL means snapshots stay in memory only.
	URL string `mapstructure:"url"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Check    CheckConfig    `mapstructure:"check"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Load reads config.yaml (working directory or ./config), layers environment
// variables over it and validates the result. Every key has a default, so a
// missing file is fine.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.public_api_keys", []string{})
	v.SetDefault("server.admin_api_keys", []string{})
	v.SetDefault("server.public_rpm", 120)
	v.SetDefault("server.public_burst", 60)
	v.SetDefault("server.admin_rpm", 30)
	v.SetDefault("server.admin_burst", 10)

	v.SetDefault("check.targets_file", "website_list.txt")
	v.SetDefault("check.workers", 50)
	v.SetDefault("check.max_retries", 1)
	v.SetDefault("check.request_timeout", "5s")
	v.SetDefault("check.interval", "30s")

	v.SetDefault("policy.https_required", true)
	v.SetDefault("policy.required_headers", []string{"Content-Type"})
	v.SetDefault("policy.content_type_allow", []string{"text/html", "application/json"})
	v.SetDefault("policy.max_body_bytes", 64*1024)
	v.SetDefault("policy.body_contains_all", []string{})
	v.SetDefault("policy.body_contains_any", []string{})

	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.level", "info")

	v.SetDefault("database.url", "")
}

// bindLegacyEnv keeps the short env names deployments already use working
// alongside the dotted-key form (e.g. SERVER_ADDR).
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.addr", "SERVER_ADDR", "ADDR")
	_ = v.BindEnv("server.public_api_keys", "SERVER_PUBLIC_API_KEYS", "PUBLIC_API_KEYS")
	_ = v.BindEnv("server.admin_api_keys", "SERVER_ADMIN_API_KEYS", "ADMIN_API_KEYS")
	_ = v.BindEnv("check.targets_file", "CHECK_TARGETS_FILE", "TARGETS_FILE")
	_ = v.BindEnv("check.workers", "CHECK_WORKERS", "WORKERS")
	_ = v.BindEnv("check.max_retries", "CHECK_MAX_RETRIES", "MAX_RETRIES")
	_ = v.BindEnv("check.interval", "CHECK_INTERVAL")
	_ = v.BindEnv("logging.dir", "LOGGING_DIR", "LOG_DIR")
	_ = v.BindEnv("logging.level", "LOGGING_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("database.url", "DATABASE_URL")
}

// BuildPolicy converts the declarative policy section into the value the
// checker consumes.
func (c *Config) BuildPolicy() validation.Policy {
	return validation.Policy{
		HTTPSRequired:    c.Policy.HTTPSRequired,
		RequiredHeaders:  c.Policy.RequiredHeaders,
		ContentTypeAllow: c.Policy.ContentTypeAllow,
		HeaderEquals:     c.Policy.HeaderEquals,
		HeaderContains:   c.Policy.HeaderContains,
		MaxBodyBytes:     c.Policy.MaxBodyBytes,
		BodyContainsAll:  c.Policy.BodyContainsAll,
		BodyContainsAny:  c.Policy.BodyContainsAny,
	}
}

func (c *Config) Validate() error {
	return ozzo.ValidateStruct(c,
		ozzo.Field(&c.Server, ozzo.By(validateServer)),
		ozzo.Field(&c.Check, ozzo.By(validateCheck)),
		ozzo.Field(&c.Policy, ozzo.By(validatePolicy)),
		ozzo.Field(&c.Logging, ozzo.By(validateLogging)),
	)
}

func validateServer(value interface{}) error {
	sc, ok := value.(ServerConfig)
	if !ok {
		return ozzo.NewError("validation_invalid_type", "must be a ServerConfig")
	}
	return ozzo.ValidateStruct(&sc,
		ozzo.Field(&sc.Addr, ozzo.Required, ozzo.By(validateHostPort)),
		ozzo.Field(&sc.PublicRPM, ozzo.By(minInt("public_rpm", 0))),
		ozzo.Field(&sc.PublicBurst, ozzo.By(minInt("public_burst", 0))),
		ozzo.Field(&sc.AdminRPM, ozzo.By(minInt("admin_rpm", 0))),
		ozzo.Field(&sc.AdminBurst, ozzo.By(minInt("admin_burst", 0))),
	)
}

func validateCheck(value interface{}) error {
	cc, ok := value.(CheckConfig)
	if !ok {
		return ozzo.NewError("validation_invalid_type", "must be a CheckConfig")
	}
	return ozzo.ValidateStruct(&cc,
		ozzo.Field(&cc.TargetsFile, ozzo.Required),
		ozzo.Field(&cc.Workers, ozzo.By(minInt("workers", 1))),
		ozzo.Field(&cc.MaxRetries, ozzo.By(minInt("max_retries", 0))),
		ozzo.Field(&cc.RequestTimeout, ozzo.By(minDuration("request_timeout", time.Millisecond))),
		ozzo.Field(&cc.Interval, ozzo.By(minDuration("interval", 0))),
	)
}

func validatePolicy(value interface{}) error {
	pc, ok := value.(PolicyConfig)
	if !ok {
		return ozzo.NewError("validation_invalid_type", "must be a PolicyConfig")
	}
	return ozzo.ValidateStruct(&pc,
		ozzo.Field(&pc.MaxBodyBytes, ozzo.By(func(v interface{}) error {
			if n, _ := v.(int64); n < 1 {
				return fmt.Errorf("max_body_bytes must be at least 1 byte, got %d", n)
			}
			return nil
		})),
		ozzo.Field(&pc.HeaderEquals, ozzo.By(namedHeaderRules("header_equals"))),
		ozzo.Field(&pc.HeaderContains, ozzo.By(namedHeaderRules("header_contains"))),
	)
}

func validateLogging(value interface{}) error {
	lc, ok := value.(LoggingConfig)
	if !ok {
		return ozzo.NewError("validation_invalid_type", "must be a LoggingConfig")
	}
	return ozzo.ValidateStruct(&lc,
		ozzo.Field(&lc.Dir, ozzo.Required),
		ozzo.Field(&lc.Level, ozzo.In("debug", "info", "warn", "error")),
	)
}

func validateHostPort(value interface{}) error {
	addr, _ := value.(string)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("must be host:port, got %q", addr)
	}
	_ = host // an empty host means all interfaces
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("port must be 1-65535, got %q", port)
	}
	return nil
}

func minInt(name string, min int) ozzo.RuleFunc {
	return func(value interface{}) error {
		n, _ := value.(int)
		if n < min {
			return fmt.Errorf("%s must be at least %d, got %d", name, min, n)
		}
		return nil
	}
}

func minDuration(name string, min time.Duration) ozzo.RuleFunc {
	return func(value interface{}) error {
		d, _ := value.(time.Duration)
		if d < min {
			return fmt.Errorf("%s must be at least %s, got %s", name, min, d)
		}
		return nil
	}
}

func namedHeaderRules(section string) ozzo.RuleFunc {
	return func(value interface{}) error {
		rules, _ := value.([]validation.HeaderRule)
		for i, r := range rules {
			if strings.TrimSpace(r.Name) == "" {
				return fmt.Errorf("%s[%d]: header name must not be empty", section, i)
			}
		}
		return nil
	}
}
