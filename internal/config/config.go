package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Session    SessionConfig    `yaml:"session"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Workers    WorkersConfig    `yaml:"workers"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// BackendConfig points at the headless CMS that owns all school data.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// ServiceToken is used by scheduled exports that run without a user session.
	ServiceToken string `yaml:"service_token"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          *bool         `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	PoolSize      int    `yaml:"pool_size"`
	SessionPrefix string `yaml:"session_prefix"`
	ExportQueue   string `yaml:"export_queue"`
	DLQSuffix     string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint    string        `yaml:"endpoint"`
	AccessKey   string        `yaml:"access_key"`
	SecretKey   string        `yaml:"secret_key"`
	Bucket      string        `yaml:"bucket"`
	Region      string        `yaml:"region"`
	UseSSL      bool          `yaml:"use_ssl"`
	PresignTTL  time.Duration `yaml:"presign_ttl"`
	ReportsPath string        `yaml:"reports_path"`
}

type SessionConfig struct {
	// Store is "redis" or "memory". Memory only suits a single gateway instance.
	Store        string        `yaml:"store"`
	TTL          time.Duration `yaml:"ttl"`
	ProfileTTL   time.Duration `yaml:"profile_ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type AttendanceConfig struct {
	// DuplicatePolicy is "append" or "skip_existing".
	DuplicatePolicy string `yaml:"duplicate_policy"`
}

type WorkersConfig struct {
	Export ExportWorkerConfig `yaml:"export"`
}

type ExportWorkerConfig struct {
	Count int               `yaml:"count"`
	Daily DailyExportConfig `yaml:"daily"`
}

type DailyExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	return LoadFile(configPath)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if config.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	// The ledger scans DATE and DATETIME columns into time.Time.
	if !*config.Database.ParseTime {
		return nil, fmt.Errorf("database.parse_time must be true")
	}

	return &config, nil
}

// Secrets may come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("BACKEND_SERVICE_TOKEN"); v != "" {
		c.Backend.ServiceToken = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "school-portal-gateway"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.ParseTime == nil {
		parseTime := true
		c.Database.ParseTime = &parseTime
	}
	if c.Database.Loc == "" {
		c.Database.Loc = "UTC"
	}
	if c.Redis.SessionPrefix == "" {
		c.Redis.SessionPrefix = "portal:session:"
	}
	if c.Redis.ExportQueue == "" {
		c.Redis.ExportQueue = "portal:exports"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Session.Store == "" {
		c.Session.Store = "redis"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.ProfileTTL == 0 {
		c.Session.ProfileTTL = 7 * 24 * time.Hour
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session_id"
	}
	if c.Attendance.DuplicatePolicy == "" {
		c.Attendance.DuplicatePolicy = "append"
	}
	if c.Storage.S3.PresignTTL == 0 {
		c.Storage.S3.PresignTTL = 15 * time.Minute
	}
	if c.Storage.S3.ReportsPath == "" {
		c.Storage.S3.ReportsPath = "reports"
	}
	if c.Workers.Export.Count == 0 {
		c.Workers.Export.Count = 2
	}
	if c.Workers.Export.Daily.Format == "" {
		c.Workers.Export.Daily.Format = "csv"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, *c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
