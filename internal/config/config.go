package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Recurrence RecurrenceConfig `mapstructure:"recurrence" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// RecurrenceConfig controls the recurrence generator and its scheduler.
//
// Schedule maps a timezone label to the UTC hour at which that label's batch
// should run. The defaults mirror the three labels the original deployment
// generated for: UTC at 00:00, EST at 05:00 and KST at 15:00 UTC, i.e. local
// midnight in each zone.
type RecurrenceConfig struct {
	// SchedulerEnabled starts the in-process scheduler alongside the HTTP
	// server. When false, generation is driven externally via cmd/recurrence.
	SchedulerEnabled bool `mapstructure:"scheduler_enabled"`

	Schedule map[string]int `mapstructure:"schedule" validate:"required,dive,gte=0,lte=23"`
}
