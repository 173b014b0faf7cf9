package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata" // часовой пояс салона должен грузиться и в минимальных образах

	"nailbot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
	yamlv3 "gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Admin      AdminConfig      `yaml:"admin"`
	Salon      SalonConfig      `yaml:"salon"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Reminders  ReminderConfig   `yaml:"reminders"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Blacklist  []int64          `yaml:"blacklist"`
	Exports    ExportConfig     `yaml:"exports"`
	Bot        BotConfig        `yaml:"bot"`
}

type BotConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
	Workers           int `yaml:"workers"`
	UpdateTimeout     int `yaml:"update_timeout"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
	Days int    `yaml:"days"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

// AdminConfig chat_id = 0 означает, что администратор не настроен.
type AdminConfig struct {
	ChatID int64 `yaml:"chat_id"`
}

type SalonConfig struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Timezone    string `yaml:"timezone"`
	CatalogPath string `yaml:"catalog_path"`
}

// Location часовой пояс салона, в котором клиент вводит дату и время.
func (s SalonConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type ReminderConfig struct {
	Backend     string `yaml:"backend"` // memory | asynq
	Queue       string `yaml:"queue"`
	Concurrency int    `yaml:"concurrency"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

type MonitoringConfig struct {
	BotToken          string `yaml:"bot_token"`
	ChatID            int64  `yaml:"chat_id"`
	DailyReportTime   string `yaml:"daily_report_time"`
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
}

// MirrorEnabled зеркалирование активности включено, только если заданы и токен, и чат.
func (m MonitoringConfig) MirrorEnabled() bool {
	return m.BotToken != "" && m.ChatID != 0
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

const (
	ReminderBackendMemory = "memory"
	ReminderBackendAsynq  = "asynq"
)

func Load(configPath string) (*Config, error) {
	// .env не обязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yamlv3.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if _, err := c.Salon.Location(); err != nil {
		return err
	}

	switch c.Reminders.Backend {
	case ReminderBackendMemory:
	case ReminderBackendAsynq:
		if c.Redis.Address == "" {
			return errors.New("asynq reminders require redis.address")
		}
	default:
		return fmt.Errorf("unknown reminders backend %q", c.Reminders.Backend)
	}

	if _, _, err := ParseClock(c.Monitoring.DailyReportTime); err != nil {
		return fmt.Errorf("monitoring.daily_report_time: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "nailbot"
	}
	if c.Salon.Name == "" {
		c.Salon.Name = "Youses nails"
	}
	if c.Salon.Address == "" {
		c.Salon.Address = "Дагестанская 10/1"
	}
	if c.Salon.Timezone == "" {
		// Уфа, UTC+5
		c.Salon.Timezone = "Asia/Yekaterinburg"
	}
	if c.Reminders.Backend == "" {
		c.Reminders.Backend = ReminderBackendMemory
	}
	if c.Reminders.Queue == "" {
		c.Reminders.Queue = "reminders"
	}
	if c.Reminders.Concurrency == 0 {
		c.Reminders.Concurrency = 2
	}
	if c.Monitoring.DailyReportTime == "" {
		c.Monitoring.DailyReportTime = "21:00"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 5
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 10
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Exports.Days == 0 {
		c.Exports.Days = models.DefaultExportDays
	}

	// Bot defaults
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
	if c.Bot.Workers == 0 {
		c.Bot.Workers = models.DefaultWorkers
	}
	if c.Bot.UpdateTimeout == 0 {
		c.Bot.UpdateTimeout = 60
	}
}

// IsAdmin сравнивает чат с настроенным чатом администратора.
func (c *Config) IsAdmin(chatID int64) bool {
	return c.Admin.ChatID != 0 && c.Admin.ChatID == chatID
}

// ParseClock разбирает время вида ЧЧ:ММ.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := models.ParseClock(s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// LoadCatalog читает прайс из YAML. Пустой путь или отсутствующий файл дают встроенный список.
func LoadCatalog(path string) ([]models.Service, error) {
	if path == "" {
		return defaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file struct {
		Services []models.Service `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := ValidateCatalog(file.Services); err != nil {
		return nil, err
	}
	return file.Services, nil
}

func ValidateCatalog(services []models.Service) error {
	if len(services) == 0 {
		return errors.New("catalog is empty")
	}
	for i, s := range services {
		if s.Name == "" {
			return fmt.Errorf("service #%d has empty name", i)
		}
		if s.DurationMin <= 0 {
			return fmt.Errorf("service '%s' has invalid duration %d", s.Name, s.DurationMin)
		}
	}
	return nil
}

func defaultCatalog() []models.Service {
	out := make([]models.Service, len(models.DefaultServices))
	copy(out, models.DefaultServices)
	return out
}
