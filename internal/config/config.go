package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// AppConfig holds the application configuration.
// It's populated once by LoadConfig.
var AppConfig Configuration
var once sync.Once

// Configuration defines the structure for application settings.
type Configuration struct {
	Server     Server     `yaml:"server"`
	Auth       Auth       `yaml:"auth"`
	Database   Database   `yaml:"database"`
	Classifier Classifier `yaml:"classifier"`
	Media      Media      `yaml:"media"`
}

type Server struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`
}

type Auth struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	Issuer            string        `yaml:"issuer"`
	StatusUpdateRoles []string      `yaml:"status_update_roles"`
}

type Database struct {
	Driver     string `yaml:"driver"` // sqlite 或 mongo
	SQLitePath string `yaml:"sqlite_path"`
	MongoURI   string `yaml:"mongo_uri"`
	MongoDB    string `yaml:"mongo_db"`
	LogLevel   string `yaml:"log_level"`
}

type Classifier struct {
	BaseURL      string        `yaml:"base_url"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
	AudioTimeout time.Duration `yaml:"audio_timeout"`
}

type Media struct {
	UploadDir     string `yaml:"upload_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
}

const (
	defaultJWTSecret = "civicsight-dev-secret" // Default JWT secret, used if neither config nor env var sets one.
	envJWTSecretKey  = "JWT_SECRET_KEY"        // Environment variable name for the JWT secret.
	envServerPortKey = "SERVER_PORT"           // Environment variable name for the server port.
	envSQLitePathKey = "SQLITE_DB_PATH"
	envDBDriverKey   = "DB_DRIVER"
	envMongoURIKey   = "MONGO_URI"
	envAIServiceKey  = "AI_SERVICE_URL"
	envPublicBaseKey = "PUBLIC_BASE_URL"
)

// LoadConfig loads configuration from the given YAML file (or the embedded
// defaults when path is empty), then applies environment overrides.
// It should be called once at application startup.
func LoadConfig(path string) error {
	var loadErr error
	once.Do(func() {
		var cfg *Configuration
		if path == "" {
			cfg, loadErr = parse(DefaultConfigYAML)
		} else {
			cfg, loadErr = Load(path)
		}
		if loadErr != nil {
			return
		}
		applyEnv(cfg)
		AppConfig = *cfg
		log.Println("应用配置已加载。")
	})
	return loadErr
}

// Load reads and parses a config YAML file.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Configuration, applying defaults.
func parse(data []byte) (*Configuration, error) {
	cfg := &Configuration{
		Server: Server{Port: "8080", Mode: "release"},
		Auth: Auth{
			TokenTTL: 24 * time.Hour,
			Issuer:   "civicsight",
		},
		Database: Database{
			Driver:     "sqlite",
			SQLitePath: "data/civicsight.db",
			MongoDB:    "civicsight",
			LogLevel:   "warn",
		},
		Classifier: Classifier{
			BaseURL:      "http://localhost:5000",
			ImageTimeout: 10 * time.Second,
			AudioTimeout: 240 * time.Second,
		},
		Media: Media{
			UploadDir:     "uploads",
			PublicBaseURL: "http://localhost:8080/uploads",
			MaxUploadMB:   25,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "mongo" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func applyEnv(cfg *Configuration) {
	if v := os.Getenv(envJWTSecretKey); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = defaultJWTSecret
		log.Printf("警告: %s 环境变量未设置。正在使用默认的JWT密钥。请在生产环境中设置此变量以保证安全。", envJWTSecretKey)
	}

	if v := os.Getenv(envServerPortKey); v != "" {
		cfg.Server.Port = v
	} else {
		log.Printf("信息: %s 环境变量未设置。正在使用端口 %s。", envServerPortKey, cfg.Server.Port)
	}

	if v := os.Getenv(envSQLitePathKey); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv(envDBDriverKey); v == "sqlite" || v == "mongo" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv(envMongoURIKey); v != "" {
		cfg.Database.MongoURI = v
	}
	if v := os.Getenv(envAIServiceKey); v != "" {
		cfg.Classifier.BaseURL = v
	}
	if v := os.Getenv(envPublicBaseKey); v != "" {
		cfg.Media.PublicBaseURL = v
	}
}
