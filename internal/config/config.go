package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	AutoMigrate    bool          `mapstructure:"AUTO_MIGRATE"`
	StaticDir      string        `mapstructure:"STATIC_DIR"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes int64         `mapstructure:"UPLOAD_MAX_BYTES"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`
	LoginRateRPS   float64       `mapstructure:"LOGIN_RATE_RPS"`
	LoginRateBurst int           `mapstructure:"LOGIN_RATE_BURST"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For is believed.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUTO_MIGRATE", "STATIC_DIR", "UPLOAD_DIR", "UPLOAD_MAX_BYTES",
	"BODY_LIMIT", "REQUEST_TIMEOUT", "BCRYPT_COST", "LOGIN_RATE_RPS",
	"LOGIN_RATE_BURST", "CORS_ORIGINS", "TRUSTED_PROXIES",
}

// Load reads the environment, falling back to an optional .env file in the
// working directory. DATABASE_URL is required.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("STATIC_DIR", "./frontend")
	v.SetDefault("UPLOAD_DIR", os.TempDir())
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOGIN_RATE_RPS", 5)
	v.SetDefault("LOGIN_RATE_BURST", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind explicitly so Unmarshal sees variables without a default.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProxyNets parses TrustedProxies. A bare address counts as a single host;
// entries Validate would reject are skipped.
func (c *Config) ProxyNets() []*net.IPNet {
	var nets []*net.IPNet
	for _, p := range c.TrustedProxies {
		if n, err := parseProxy(p); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func parseProxy(s string) (*net.IPNet, error) {
	if ip := net.ParseIP(s); ip != nil {
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
	}
	_, n, err := net.ParseCIDR(s)
	return n, err
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.LoginRateRPS <= 0 {
		return fmt.Errorf("LOGIN_RATE_RPS must be positive, got %v", c.LoginRateRPS)
	}
	if c.LoginRateBurst < 1 {
		return fmt.Errorf("LOGIN_RATE_BURST must be at least 1, got %d", c.LoginRateBurst)
	}
	for _, p := range c.TrustedProxies {
		if _, err := parseProxy(p); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR range", p)
		}
	}
	return nil
}
