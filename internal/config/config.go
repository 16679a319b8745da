package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SourcesConfig holds the on-disk layout of the raw codebook documents the
// batch ingest walks. Each document family lives in its own subdirectory of
// DataDir; the year lists bound which release years are expected.
type SourcesConfig struct {
	DataDir        string `yaml:"data_dir"          env:"SOURCES_DATA_DIR"        env-default:"./data/raw"`
	CoreDir        string `yaml:"core_dir"          env:"SOURCES_CORE_DIR"        env-default:"hrs_core_codebook"`
	ExitDir        string `yaml:"exit_dir"          env:"SOURCES_EXIT_DIR"        env-default:"hrs_exit_codebook"`
	PostExitDir    string `yaml:"post_exit_dir"     env:"SOURCES_POST_EXIT_DIR"   env-default:"hrs_post_exit_codebook"`
	ParallelFiles  int    `yaml:"parallel_files"    env:"SOURCES_PARALLEL_FILES"  env-default:"8"`
	CoreYearsRaw   string `yaml:"core_years"        env:"SOURCES_CORE_YEARS"      env-default:"1992-2022"`
	ExitYearsRaw   string `yaml:"exit_years"        env:"SOURCES_EXIT_YEARS"      env-default:"1996-2020"`
	PostExitYears  string `yaml:"post_exit_years"   env:"SOURCES_POST_EXIT_YEARS" env-default:"2012-2020"`

	// Parsed year ranges, populated during validation.
	CoreYears     []int `yaml:"-" env:"-"`
	ExitYears     []int `yaml:"-" env:"-"`
	PostExitRange []int `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
