package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Extraction ExtractionConfig `mapstructure:"extraction" validate:"required"`
	Upload     UploadConfig     `mapstructure:"upload" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// ExtractionConfig tunes the extraction pipeline.
type ExtractionConfig struct {
	// BaseWorkers seeds the optimizer's worker heuristic.
	BaseWorkers int `mapstructure:"base_workers" validate:"required,gte=1,lte=16"`

	// OCRLanguage is the default recognition language.
	OCRLanguage string `mapstructure:"ocr_language" validate:"required"`

	// CacheTTL bounds how long download, OCR, and extraction cache entries
	// live.
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"required,gt=0"`

	// TaskRetention is how long finished tasks stay queryable.
	TaskRetention time.Duration `mapstructure:"task_retention" validate:"required,gt=0"`

	// ActiveRemovalDelay is how long a finished task stays in the active
	// list.
	ActiveRemovalDelay time.Duration `mapstructure:"active_removal_delay" validate:"required,gt=0"`

	// SweepInterval is how often expired tasks and cache entries are swept.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,gt=0"`
}

// UploadConfig bounds incoming document uploads.
type UploadConfig struct {
	// MaxSizeBytes caps the request body of a document upload.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes" validate:"required,gt=0"`

	// TempDir receives uploaded and downloaded documents.
	TempDir string `mapstructure:"temp_dir" validate:"required"`
}
