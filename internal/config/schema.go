// Package config provides configuration loading and validation for
// sweepbot. It supports TOML configuration files with environment
// variable expansion, default values, and comprehensive validation.
//
// Configuration structure:
//   - [workspace]: Workspace directory (message index files live here)
//   - [telegram]: Bot token and authorization allow-lists
//   - [sweep]: Batch size, pacing, paging and retry limits
//   - [classify]: Service-message policy and keep patterns
//   - [schedule]: Optional periodic per-chat sweeps
//   - [logging]: Logging level, format, and output
//   - [metrics]: Prometheus metrics listener
//
// Environment variables can be referenced using ${VAR} or ${VAR:default}
// syntax. For example: token = "${SWEEPBOT_TOKEN}"
package config

// Config represents the main application configuration.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Sweep     SweepConfig     `toml:"sweep"`
	Classify  ClassifyConfig  `toml:"classify"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// WorkspaceConfig locates the bot's working directory.
type WorkspaceConfig struct {
	Path string `toml:"path"`
}

// TelegramConfig configures the Telegram connector and authorization.
type TelegramConfig struct {
	Token              string  `toml:"token"`
	AllowedUsers       []int64 `toml:"allowed_users"` // принципалы, которым разрешён /clean
	AllowedChats       []int64 `toml:"allowed_chats"` // пустой список = все группы
	AdminOnly          bool    `toml:"admin_only"`    // любой админ чата может запускать уборку
	SendTimeoutSeconds int     `toml:"send_timeout_seconds"`
}

// SweepConfig bounds the cleanup pipeline.
type SweepConfig struct {
	BatchSize              int `toml:"batch_size"`                // max message ids per delete call, platform cap 100
	InterBatchDelaySeconds int `toml:"inter_batch_delay_seconds"` // mandatory pause between batches
	PageSize               int `toml:"page_size"`                 // history page size
	MessageLimit           int `toml:"message_limit"`             // 0 = unbounded
	MaxRateLimitRetries    int `toml:"max_rate_limit_retries"`    // retry ceiling per batch
	AdminCacheTTLSeconds   int `toml:"admin_cache_ttl_seconds"`   // 0 = refresh once per run
}

// ClassifyConfig configures the message classifier policy.
type ClassifyConfig struct {
	// ServiceMessages selects what happens to service/system messages
	// (joins, pins, title changes): "protect" or "delete".
	ServiceMessages string `toml:"service_messages"`
	// KeepPatterns are regular expressions; matching messages are kept.
	KeepPatterns []string `toml:"keep_patterns"`
}

// ScheduleConfig holds optional periodic sweep jobs.
type ScheduleConfig struct {
	Jobs []ScheduleJob `toml:"jobs"`
}

// ScheduleJob is one periodic per-chat sweep.
type ScheduleJob struct {
	ChatID int64  `toml:"chat_id"`
	Cron   string `toml:"cron"` // standard 5-field cron spec
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
}
