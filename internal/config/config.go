package config

import "time"

// BuildVersion is stamped at link time (-ldflags "-X ...BuildVersion=...");
// left as a placeholder default like the teacher's own config.BuildVersion.
var BuildVersion = "dev"

// Config is the whole process configuration, loaded by LoadConfig from
// environment variables and command-line flags (env/flag struct tags,
// walked by github.com/omeid/uconfig/flat).
type Config struct {
	Manager ManagerConfig
	Pool    PoolConfig
	HTTP    HTTPConfig
	Log     LogConfig
}

// ManagerConfig configures the Supervisor Loop and Failover Timer
// (spec.md §4.2, §4.4).
type ManagerConfig struct {
	MaxConnectionAttempts int    `env:"MANAGER_MAX_CONNECTION_ATTEMPTS" flag:"manager-max-connection-attempts" desc:"consecutive failures against one endpoint before rotating" validate:"min=1"`
	FailoverTimeoutSec    int    `env:"MANAGER_FAILOVER_TIMEOUT_SEC" flag:"manager-failover-timeout-sec" desc:"seconds on a fallback endpoint before forcing a return to primary; 0 disables" validate:"min=0"`
	HashrateReportSec     int    `env:"MANAGER_HASHRATE_REPORT_SEC" flag:"manager-hashrate-report-sec" desc:"seconds between hash rate reports to the pool; 0 or unset means 30" validate:"min=0"`
	MinerType             string `env:"MANAGER_MINER_TYPE" flag:"manager-miner-type" desc:"CL, CUDA or Mixed" validate:"oneof=CL CUDA Mixed"`
}

// FailoverTimeout renders FailoverTimeoutSec as a time.Duration.
func (m ManagerConfig) FailoverTimeout() time.Duration {
	return time.Duration(m.FailoverTimeoutSec) * time.Second
}

// HashrateReportInterval renders HashrateReportSec as a time.Duration.
func (m ManagerConfig) HashrateReportInterval() time.Duration {
	return time.Duration(m.HashrateReportSec) * time.Second
}

// PoolConfig seeds the Connection Registry at startup (spec.md §4.1).
// Endpoints is a comma-separated list of pool URIs; the first is primary.
type PoolConfig struct {
	Endpoints string `env:"POOL_ENDPOINTS" flag:"pool-endpoints" desc:"comma-separated pool URIs, primary first" validate:"required"`
}

// HTTPConfig configures the Public Control Surface transport (spec.md §4.6).
type HTTPConfig struct {
	Address string `env:"HTTP_ADDRESS" flag:"http-address" desc:"listen address for the control API" validate:"required"`
}

// LogConfig mirrors the teacher's cfg.Log.* shape.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" flag:"log-level" desc:"debug, info, warn or error" validate:"oneof=debug info warn error"`
	Color      bool   `env:"LOG_COLOR" flag:"log-color" desc:"colorize console output"`
	IsProd     bool   `env:"LOG_PROD" flag:"log-prod" desc:"use production encoder settings and turn off zap development mode"`
	JSON       bool   `env:"LOG_JSON" flag:"log-json" desc:"encode log lines as JSON"`
	FolderPath string `env:"LOG_FOLDER_PATH" flag:"log-folder-path" desc:"directory for log files (one new file per start), empty disables file logging"`
}

// SetDefaults fills in the values LoadConfig should apply when neither an
// env var nor a flag set them, matching the teacher's
// ConfigWithDefaults.SetDefaults hook.
func (c *Config) SetDefaults() {
	if c.Manager.MaxConnectionAttempts == 0 {
		c.Manager.MaxConnectionAttempts = 3
	}
	if c.Manager.HashrateReportSec == 0 {
		c.Manager.HashrateReportSec = 30
	}
	if c.Manager.MinerType == "" {
		c.Manager.MinerType = "CUDA"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = "127.0.0.1:3333"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
