package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/angas/rotariff-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Cookie key for session flashes, default: a fixed dev key
	SessionSecret *string `mapstructure:"session_secret"`
}

func (a AppConfigApi) GetSessionSecret() string {
	if a.SessionSecret == nil {
		return "rotariff-dev-session-key"
	}
	return *a.SessionSecret
}

type AppConfigDatabase struct {
	Path string
	// How many days data should be stored in database before it gets purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigOpcom struct {
	// Report export endpoint, default: the public OPCOM PZU export
	BaseUrl *string `mapstructure:"base_url"`
	// Language/region path suffix of the export URL, default: "ro"
	Region *string
	// Market timezone, default: "Europe/Bucharest"
	Timezone *string
	// Earliest delivery day the backfill will request (ISO date)
	StartDate *string `mapstructure:"start_date"`
}

func (o AppConfigOpcom) GetBaseUrl() string {
	if o.BaseUrl == nil {
		return "https://www.opcom.ro/rapoarte-pzu-raportPIP-export-csv"
	}
	return *o.BaseUrl
}

func (o AppConfigOpcom) GetRegion() string {
	if o.Region == nil {
		return "ro"
	}
	return *o.Region
}

func (o AppConfigOpcom) GetTimezone() string {
	if o.Timezone == nil {
		return "Europe/Bucharest"
	}
	return *o.Timezone
}

func (o AppConfigOpcom) GetStartDate() string {
	if o.StartDate == nil {
		return "2023-12-14"
	}
	return *o.StartDate
}

type AppConfigFetch struct {
	// How often the scheduler ticks in minutes, default: 15
	IntervalMinutes *int `mapstructure:"interval_minutes"`
	// Local hour after which tomorrow's series is requested, default: 13
	CutoffHour *int `mapstructure:"cutoff_hour"`
	// Re-request tomorrow when its snapshot is older than this many minutes, default: 120
	RefreshAfterMinutes *int `mapstructure:"refresh_after_minutes"`
	// Walk start_date..today for missing archive days
	Backfill bool
}

func (f AppConfigFetch) GetInterval() time.Duration {
	if f.IntervalMinutes == nil {
		return 15 * time.Minute
	}
	return time.Duration(*f.IntervalMinutes) * time.Minute
}

func (f AppConfigFetch) GetCutoffHour() int {
	if f.CutoffHour == nil {
		return 13
	}
	return *f.CutoffHour
}

func (f AppConfigFetch) GetRefreshAfter() time.Duration {
	if f.RefreshAfterMinutes == nil {
		return 2 * time.Hour
	}
	return time.Duration(*f.RefreshAfterMinutes) * time.Minute
}

type AppConfigTasksRunAt struct {
	// Maintenance cron spec, default: "30 2 * * *"
	Maintenance *string
	// Backfill cron spec, default: "45 3 * * *"
	Backfill *string
}

func (t AppConfigTasksRunAt) GetMaintenance() string {
	if t.Maintenance == nil {
		return "30 2 * * *"
	}
	return *t.Maintenance
}

func (t AppConfigTasksRunAt) GetBackfill() string {
	if t.Backfill == nil {
		return "45 3 * * *"
	}
	return *t.Backfill
}

type AppConfigTasks struct {
	RunAt AppConfigTasksRunAt `mapstructure:"run_at"`
}

type AppConfigMqtt struct {
	// Broker URL, e.g. "tcp://homeassistant.local:1883". Empty disables publishing.
	Url      string
	Username string
	Password string
	ClientId *string `mapstructure:"client_id"`
	// Home Assistant discovery prefix, default: "homeassistant"
	DiscoveryPrefix *string `mapstructure:"discovery_prefix"`
	// Topic root for state and attribute messages, default: "rotariff"
	BaseTopic *string `mapstructure:"base_topic"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Url != ""
}

func (m AppConfigMqtt) GetClientId() string {
	if m.ClientId == nil {
		return "rotariff"
	}
	return *m.ClientId
}

func (m AppConfigMqtt) GetDiscoveryPrefix() string {
	if m.DiscoveryPrefix == nil {
		return "homeassistant"
	}
	return *m.DiscoveryPrefix
}

func (m AppConfigMqtt) GetBaseTopic() string {
	if m.BaseTopic == nil {
		return "rotariff"
	}
	return *m.BaseTopic
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	return logging.AttrFormatFromString(l.DbAttrsFormat)
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Opcom    AppConfigOpcom
	Fetch    AppConfigFetch
	Tasks    AppConfigTasks
	Mqtt     AppConfigMqtt
	Logging  AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
