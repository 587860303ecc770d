package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/workoutbot/internal/store"
)

// Config holds all configuration for the bot.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Timezone  string          `mapstructure:"timezone"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Backup    BackupConfig    `mapstructure:"backup"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type StorageConfig struct {
	Backend         string `mapstructure:"backend"`
	FilePath        string `mapstructure:"file_path"`
	CreateIfMissing bool   `mapstructure:"create_if_missing"`
	DSN             string `mapstructure:"dsn"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
}

type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	AppID   string `mapstructure:"app_id"`
	GuildID string `mapstructure:"guild_id"`
}

type TelegramConfig struct {
	Token    string  `mapstructure:"token"`
	AdminIDs []int64 `mapstructure:"admin_ids"`
}

// RemindersConfig controls the daily workout reminders
type RemindersConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Hour    int  `mapstructure:"hour"`
}

// BackupConfig describes the S3-compatible bucket snapshots are uploaded to.
// Backups are off while Bucket is empty.
type BackupConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	Interval        time.Duration `mapstructure:"interval"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// Location resolves the configured time zone, defaulting to the local zone
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %v", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings every command needs
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendFile:
		if c.Storage.FilePath == "" {
			return errors.New("storage.file_path is required for the file backend")
		}
	case store.BackendSQLite, store.BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s backend", c.Storage.Backend)
		}
	case store.BackendMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Reminders.Hour < 0 || c.Reminders.Hour > 23 {
		return fmt.Errorf("reminders.hour must be between 0 and 23, got %d", c.Reminders.Hour)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", store.BackendFile)
	v.SetDefault("storage.file_path", "data/workouts.json")
	v.SetDefault("storage.create_if_missing", true)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.mongo_uri", "")
	v.SetDefault("storage.mongo_database", "workoutbot")
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.app_id", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_ids", []int64{})
	v.SetDefault("timezone", "Local")
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.hour", 8)
	v.SetDefault("backup.endpoint", "")
	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.access_key_id", "")
	v.SetDefault("backup.secret_access_key", "")
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.prefix", "workoutbot/")
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("http.address", ":8080")
}

// Load reads configuration from .env, an optional config file and the
// environment. path is a config file or a directory holding config.yaml;
// empty means the working directory.
func Load(path string) (Config, error) {
	var cfg Config

	// .env is optional
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		if path == "" {
			path = "."
		}
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	// Variable names used by earlier deployments of the bot
	if err := v.BindEnv("discord.token", "DISCORD_TOKEN", "BOT_TOKEN"); err != nil {
		return cfg, err
	}
	if err := v.BindEnv("storage.file_path", "STORAGE_FILE_PATH", "FILENAME"); err != nil {
		return cfg, err
	}
	if err := v.BindEnv("telegram.token", "TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return cfg, err
	}
	setDefaults(v)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return cfg, fmt.Errorf("failed to read config: %v", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %v", err)
	}
	return cfg, cfg.Validate()
}
