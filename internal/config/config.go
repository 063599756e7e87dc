package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	UnitOfWork UnitOfWorkConfig `mapstructure:"unit_of_work" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver is the database/sql driver name: "pgx" for PostgreSQL or "sqlite".
	Driver          string        `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	// OpenTimeout bounds how long opening a handle may block.
	OpenTimeout time.Duration `mapstructure:"open_timeout" validate:"gte=0"`
}

// UnitOfWorkConfig controls proxy construction and timestamp handling.
type UnitOfWorkConfig struct {
	// Namespaces lists the data-access namespaces to expose at startup.
	Namespaces []string `mapstructure:"namespaces" validate:"required,min=1,dive,required"`
	// KindTag is the struct tag key classifying data-access methods.
	KindTag string `mapstructure:"kind_tag" validate:"required,alphanum"`
	// TimeZone overrides the process default zone used when reading
	// timestamps back. Empty means the process local zone.
	TimeZone string `mapstructure:"time_zone" validate:"omitempty,timezone"`
}
