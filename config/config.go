package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 환경변수 접두사
const EnvPrefix = "FEEDADMIN"

// Config 애플리케이션 전체 설정
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	License  LicenseConfig  `yaml:"license" envconfig:"LICENSE"`
	Graph    GraphConfig    `yaml:"graph" envconfig:"GRAPH"`
	Support  SupportConfig  `yaml:"support" envconfig:"SUPPORT"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port         int           `yaml:"port" envconfig:"PORT" default:"8080"`
	PublicURL    string        `yaml:"public_url" envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	WebDir       string        `yaml:"web_dir" envconfig:"WEB_DIR" default:"./web"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"150s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`

	// AllowedOrigins 관리 화면을 다른 출처에서 띄울 때만 설정
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// DatabaseConfig 데이터베이스 설정
type DatabaseConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER" default:"sqlite"`
	DSN    string `yaml:"dsn" envconfig:"DSN" default:"./feed-admin.db"`
}

// LogConfig 로거 설정
type LogConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Dir        string `yaml:"dir" envconfig:"DIR" default:"./logs"`
	MaxSizeMB  int64  `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" default:"10"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" default:"7"`
	UseColor   bool   `yaml:"use_color" envconfig:"USE_COLOR" default:"true"`
	ShowCaller bool   `yaml:"show_caller" envconfig:"SHOW_CALLER" default:"false"`
}

// LicenseConfig 원격 라이선스 스토어 설정
type LicenseConfig struct {
	StoreURL   string        `yaml:"store_url" envconfig:"STORE_URL" default:"https://store.example.com/"`
	ItemName   string        `yaml:"item_name" envconfig:"ITEM_NAME" default:"Instagram Feed Pro"`
	SiteURL    string        `yaml:"site_url" envconfig:"SITE_URL" default:"http://localhost:8080"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
	RecheckTTL time.Duration `yaml:"recheck_ttl" envconfig:"RECHECK_TTL" default:"2160h"`
}

// GraphConfig 인스타그램/페이스북 Graph API 설정
type GraphConfig struct {
	BasicDisplayURL string        `yaml:"basic_display_url" envconfig:"BASIC_DISPLAY_URL" default:"https://graph.instagram.com/"`
	GraphURL        string        `yaml:"graph_url" envconfig:"GRAPH_URL" default:"https://graph.facebook.com/"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"120s"`
}

// SupportConfig 임시 지원 계정 설정
type SupportConfig struct {
	SessionTTL     time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" default:"360h"`
	LoginRPS       float64       `yaml:"login_rps" envconfig:"LOGIN_RPS" default:"0.2"`
	LoginBurst     int           `yaml:"login_burst" envconfig:"LOGIN_BURST" default:"5"`
	DiagnosticsURL string        `yaml:"diagnostics_url" envconfig:"DIAGNOSTICS_URL" default:"/web/#/support"`
}

// SecurityConfig 인증/위조 방지 설정
type SecurityConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	NonceSecret   string        `yaml:"nonce_secret" envconfig:"NONCE_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL" default:"24h"`
	NonceTTL      time.Duration `yaml:"nonce_ttl" envconfig:"NONCE_TTL" default:"24h"`
	AdminLogin    string        `yaml:"admin_login" envconfig:"ADMIN_LOGIN" default:"admin"`
	AdminPassword string        `yaml:"admin_password" envconfig:"ADMIN_PASSWORD"`
	AdminEmail    string        `yaml:"admin_email" envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	CookieSecure  bool          `yaml:"cookie_secure" envconfig:"COOKIE_SECURE" default:"false"`
}

// RedisConfig 피드 캐시용 Redis 설정 (Addr 가 비어 있으면 SQL 캐시 사용)
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"ADDR"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB" default:"0"`
}

// Load 환경변수와 설정 파일에서 설정을 읽는다 (환경변수 우선)
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv(EnvPrefix + "_CONFIG")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := LoadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadFile YAML 설정 파일 읽기
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge fills secrets and endpoints the environment left empty from the file.
// Values that carry an env default are only overridden when the env var is absent.
func merge(file, env Config) Config {
	pick := func(envName, envVal, fileVal string) string {
		if _, set := os.LookupEnv(EnvPrefix + "_" + envName); set || fileVal == "" {
			return envVal
		}
		return fileVal
	}

	env.Server.PublicURL = pick("SERVER_PUBLIC_URL", env.Server.PublicURL, file.Server.PublicURL)
	env.Server.WebDir = pick("SERVER_WEB_DIR", env.Server.WebDir, file.Server.WebDir)
	if _, set := os.LookupEnv(EnvPrefix + "_SERVER_ALLOWED_ORIGINS"); !set && len(file.Server.AllowedOrigins) > 0 {
		env.Server.AllowedOrigins = file.Server.AllowedOrigins
	}
	env.Database.Driver = pick("DATABASE_DRIVER", env.Database.Driver, file.Database.Driver)
	env.Database.DSN = pick("DATABASE_DSN", env.Database.DSN, file.Database.DSN)
	env.Log.Level = pick("LOG_LEVEL", env.Log.Level, file.Log.Level)
	env.Log.Dir = pick("LOG_DIR", env.Log.Dir, file.Log.Dir)
	env.License.StoreURL = pick("LICENSE_STORE_URL", env.License.StoreURL, file.License.StoreURL)
	env.License.ItemName = pick("LICENSE_ITEM_NAME", env.License.ItemName, file.License.ItemName)
	env.License.SiteURL = pick("LICENSE_SITE_URL", env.License.SiteURL, file.License.SiteURL)
	env.Graph.BasicDisplayURL = pick("GRAPH_BASIC_DISPLAY_URL", env.Graph.BasicDisplayURL, file.Graph.BasicDisplayURL)
	env.Graph.GraphURL = pick("GRAPH_GRAPH_URL", env.Graph.GraphURL, file.Graph.GraphURL)
	env.Security.JWTSecret = pick("SECURITY_JWT_SECRET", env.Security.JWTSecret, file.Security.JWTSecret)
	env.Security.NonceSecret = pick("SECURITY_NONCE_SECRET", env.Security.NonceSecret, file.Security.NonceSecret)
	env.Security.AdminLogin = pick("SECURITY_ADMIN_LOGIN", env.Security.AdminLogin, file.Security.AdminLogin)
	env.Security.AdminPassword = pick("SECURITY_ADMIN_PASSWORD", env.Security.AdminPassword, file.Security.AdminPassword)
	env.Redis.Addr = pick("REDIS_ADDR", env.Redis.Addr, file.Redis.Addr)
	env.Redis.Password = pick("REDIS_PASSWORD", env.Redis.Password, file.Redis.Password)

	if _, set := os.LookupEnv(EnvPrefix + "_SERVER_PORT"); !set && file.Server.Port != 0 {
		env.Server.Port = file.Server.Port
	}
	if _, set := os.LookupEnv(EnvPrefix + "_LICENSE_TIMEOUT"); !set && file.License.Timeout != 0 {
		env.License.Timeout = file.License.Timeout
	}
	if _, set := os.LookupEnv(EnvPrefix + "_GRAPH_TIMEOUT"); !set && file.Graph.Timeout != 0 {
		env.Graph.Timeout = file.Graph.Timeout
	}
	if _, set := os.LookupEnv(EnvPrefix + "_SUPPORT_SESSION_TTL"); !set && file.Support.SessionTTL != 0 {
		env.Support.SessionTTL = file.Support.SessionTTL
	}
	return env
}

// Validate 설정 값 검증
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database driver: %s", c.Database.Driver))
	}
	if strings.TrimSpace(c.License.StoreURL) == "" {
		problems = append(problems, "license store url is required")
	}
	// 원격 호출 타임아웃은 60~120초 범위로 제한
	if c.License.Timeout < time.Second || c.License.Timeout > 120*time.Second {
		problems = append(problems, fmt.Sprintf("license timeout out of range: %s", c.License.Timeout))
	}
	if c.Graph.Timeout < time.Second || c.Graph.Timeout > 120*time.Second {
		problems = append(problems, fmt.Sprintf("graph timeout out of range: %s", c.Graph.Timeout))
	}
	if c.Support.SessionTTL <= 0 {
		problems = append(problems, "support session ttl must be positive")
	}
	if c.License.RecheckTTL <= 0 {
		problems = append(problems, "license recheck ttl must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
