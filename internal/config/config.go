package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local" validate:"oneof=local dev prod"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	Bcrypt     Bcrypt     `yaml:"bcrypt"`
	CORS       CORS       `yaml:"cors"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Gemini     Gemini     `yaml:"gemini"`
	Ingestion  Ingestion  `yaml:"ingestion"`
	Extraction Extraction `yaml:"extraction"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost" validate:"required"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432" validate:"required"`
	User     string `yaml:"user" env:"DB_USER" validate:"required"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"exitprep" validate:"required"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	// URL overrides the individual fields when set.
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type JWT struct {
	SecretKey string        `yaml:"secret_key" env:"JWT_SECRET_KEY" validate:"required,min=16"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"exitprep"`
	AccessTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m" validate:"gt=0"`
}

type Bcrypt struct {
	Cost int `yaml:"cost" env:"BCRYPT_COST" env-default:"10" validate:"min=4,max=31"`
}

type CORS struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-default:"http://localhost:3000,http://127.0.0.1:3000"`
}

type ES struct {
	Enabled  bool     `yaml:"enabled" env:"ES_ENABLED"`
	Hosts    []string `yaml:"hosts" env:"ES_HOSTS" validate:"required_if=Enabled true"`
	Index    string   `yaml:"index" env:"ES_INDEX" env-default:"questions"`
	Username string   `yaml:"username" env:"ES_USERNAME" env-default:"elastic"`
	Password string   `yaml:"password" env:"ES_PASSWORD"`
}

type Minio struct {
	Enabled   bool   `yaml:"enabled" env:"MINIO_ENABLED"`
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" validate:"required_if=Enabled true"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" validate:"required_if=Enabled true"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"past-papers"`
}

type Gemini struct {
	APIKey     string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model      string        `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	BaseURL    string        `yaml:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	MaxRetries int           `yaml:"max_retries" env:"GEMINI_MAX_RETRIES" env-default:"3" validate:"min=0,max=10"`
	Timeout    time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT" env-default:"120s"`
}

type Ingestion struct {
	InputDir      string `yaml:"input_dir" env:"INGEST_INPUT_DIR" env-default:"data/processed_questions"`
	ArchivePrefix string `yaml:"archive_prefix" env:"INGEST_ARCHIVE_PREFIX" env-default:"processed_questions/"`
	ChapterTitle  string `yaml:"default_chapter" env:"INGEST_DEFAULT_CHAPTER" env-default:"General"`
}

type Extraction struct {
	RawDir    string `yaml:"raw_dir" env:"EXTRACT_RAW_DIR" env-default:"data/past_papers_raw"`
	TextDir   string `yaml:"text_dir" env:"EXTRACT_TEXT_DIR" env-default:"data/past_papers_text"`
	OutDir    string `yaml:"out_dir" env:"EXTRACT_OUT_DIR" env-default:"data/processed_questions"`
	PDFToText string `yaml:"pdftotext" env:"PDFTOTEXT_PATH" env-default:"pdftotext"`
}

// DSN builds the pgx connection string.
func (p Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Load reads path (YAML) when non-empty, then environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadExtraction is Load for the extractor, which needs neither the database
// nor token settings.
func LoadExtraction(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	for _, section := range []any{cfg.Gemini, cfg.Extraction, cfg.Minio} {
		if err := v.Struct(section); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("invalid config: gemini.api_key is required")
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Can not load config: %s", err)
	}
	return cfg
}
