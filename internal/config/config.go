// Package config loads runtime settings for the pedigree CLI and service.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// PEDIGREE_* variables from the process environment or a .env file. The
// process environment wins over .env. The result is checked with struct
// validation before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the YAML file when no explicit path is given.
const EnvConfigPath = "PEDIGREE_CONFIG"

// DefaultEnvFile is read when present; its absence is not an error.
const DefaultEnvFile = ".env"

// Config is the full runtime configuration.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Archive  Archive  `yaml:"archive"`
	Pedigree Pedigree `yaml:"pedigree"`
	Batch    Batch    `yaml:"batch"`
	Log      Log      `yaml:"log"`
	Metrics  Metrics  `yaml:"metrics"`
}

type Storage struct {
	Driver      string `yaml:"driver" validate:"oneof=memory sqlite postgres badger"`
	SQLitePath  string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `yaml:"postgres_dsn"`
	BadgerPath  string `yaml:"badger_path" validate:"required_if=Driver badger"`
}

type Archive struct {
	Driver string `yaml:"driver" validate:"oneof=fs s3 memory"`
	FSRoot string `yaml:"fs_root" validate:"required_if=Driver fs"`
	S3     S3     `yaml:"s3"`
}

type S3 struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// Pedigree holds the generation depths. Both defaults must fit under
// MaxGenerations, which itself cannot exceed 9.
type Pedigree struct {
	DefaultGenerations int `yaml:"default_generations" validate:"min=1,ltefield=MaxGenerations"`
	COIGenerations     int `yaml:"coi_generations" validate:"min=1,ltefield=MaxGenerations"`
	MaxGenerations     int `yaml:"max_generations" validate:"min=1,max=9"`
}

type Batch struct {
	Concurrency int `yaml:"concurrency" validate:"min=1,max=64"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type Metrics struct {
	// Textfile, when set, receives a Prometheus text exposition on exit.
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: Storage{Driver: "sqlite", SQLitePath: "pedigree.db", BadgerPath: "pedigree.badger"},
		Archive: Archive{Driver: "fs", FSRoot: "archive", S3: S3{Region: "us-east-1"}},
		Pedigree: Pedigree{
			DefaultGenerations: 4,
			COIGenerations:     5,
			MaxGenerations:     9,
		},
		Batch: Batch{Concurrency: 4},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads path (or $PEDIGREE_CONFIG when path is empty) on top of the
// defaults and applies environment overrides from the process and ./.env.
func Load(path string) (Config, error) {
	return LoadWith(path, DefaultEnvFile)
}

// LoadWith is Load with an explicit .env location. An empty envFile skips
// dotenv handling.
func LoadWith(path, envFile string) (Config, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = vals
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Default()
	if path == "" {
		path, _ = lookup(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if c.Archive.Driver == "s3" && strings.TrimSpace(c.Archive.S3.Bucket) == "" {
		return errors.New("config: invalid: archive.s3.bucket is required for the s3 driver")
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PEDIGREE_STORAGE_DRIVER":           &cfg.Storage.Driver,
		"PEDIGREE_SQLITE_PATH":              &cfg.Storage.SQLitePath,
		"PEDIGREE_POSTGRES_DSN":             &cfg.Storage.PostgresDSN,
		"PEDIGREE_BADGER_PATH":              &cfg.Storage.BadgerPath,
		"PEDIGREE_ARCHIVE_DRIVER":           &cfg.Archive.Driver,
		"PEDIGREE_ARCHIVE_FS_ROOT":          &cfg.Archive.FSRoot,
		"PEDIGREE_ARCHIVE_S3_BUCKET":        &cfg.Archive.S3.Bucket,
		"PEDIGREE_ARCHIVE_S3_REGION":        &cfg.Archive.S3.Region,
		"PEDIGREE_ARCHIVE_S3_ENDPOINT":      &cfg.Archive.S3.Endpoint,
		"PEDIGREE_ARCHIVE_S3_ACCESS_KEY_ID": &cfg.Archive.S3.AccessKeyID,
		"PEDIGREE_ARCHIVE_S3_SECRET_KEY":    &cfg.Archive.S3.SecretAccessKey,
		"PEDIGREE_ARCHIVE_S3_SESSION_TOKEN": &cfg.Archive.S3.SessionToken,
		"PEDIGREE_LOG_LEVEL":                &cfg.Log.Level,
		"PEDIGREE_LOG_FORMAT":               &cfg.Log.Format,
		"PEDIGREE_METRICS_TEXTFILE":         &cfg.Metrics.Textfile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"PEDIGREE_DEFAULT_GENERATIONS": &cfg.Pedigree.DefaultGenerations,
		"PEDIGREE_COI_GENERATIONS":     &cfg.Pedigree.COIGenerations,
		"PEDIGREE_MAX_GENERATIONS":     &cfg.Pedigree.MaxGenerations,
		"PEDIGREE_BATCH_CONCURRENCY":   &cfg.Batch.Concurrency,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := lookup("PEDIGREE_ARCHIVE_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: PEDIGREE_ARCHIVE_S3_PATH_STYLE: %w", err)
		}
		cfg.Archive.S3.PathStyle = b
	}
	return nil
}
