package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Email         EmailConfig         `yaml:"email"`
	SMS           SMSConfig           `yaml:"sms"`
	Events        EventsConfig        `yaml:"events"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ServerConfig contains the REST listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GRPCConfig contains the health-check listener; port 0 disables it.
type GRPCConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// EmailConfig configures SendGrid delivery; an empty API key disables e-mail.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// SMSConfig configures Twilio delivery; an empty account SID disables SMS.
type SMSConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// EventsConfig configures the RabbitMQ booking event queue; an empty URL disables publishing.
type EventsConfig struct {
	RabbitMQURL string `yaml:"rabbitmq_url"`
	Queue       string `yaml:"queue"`
}

// SchedulerConfig contains cron schedule settings (with seconds field, UTC)
type SchedulerConfig struct {
	SendOverdueReminders      string `yaml:"send_overdue_reminders"`
	SendDueSoonReminders      string `yaml:"send_due_soon_reminders"`
	SendStartingSoonReminders string `yaml:"send_starting_soon_reminders"`
}

type NotificationsConfig struct {
	LookaheadHours int `yaml:"lookahead_hours"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.GRPC.Port, "GRPC_PORT")

	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	setString(&c.JWT.Secret, "JWT_SECRET")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Email.SendGridAPIKey, "SENDGRID_API_KEY")
	setString(&c.Email.FromEmail, "EMAIL_FROM")

	setString(&c.SMS.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&c.SMS.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&c.SMS.FromNumber, "TWILIO_FROM_NUMBER")

	setString(&c.Events.RabbitMQURL, "RABBITMQ_URL")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// Validate checks required settings and fills in defaults.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Email.SendGridAPIKey != "" && c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required when SendGrid is enabled")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Vehicle Rental Desk"
	}
	if c.SMS.AccountSID != "" && c.SMS.FromNumber == "" {
		return fmt.Errorf("SMS from number is required when Twilio is enabled")
	}

	if c.Events.Queue == "" {
		c.Events.Queue = "booking.events"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.SendDueSoonReminders == "" {
		c.Scheduler.SendDueSoonReminders = "0 0 * * * *" // hourly
	}
	if c.Scheduler.SendStartingSoonReminders == "" {
		c.Scheduler.SendStartingSoonReminders = "0 30 * * * *" // hourly at :30
	}

	if c.Notifications.LookaheadHours <= 0 {
		c.Notifications.LookaheadHours = 24
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the REST listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.GRPC.Port)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.Notifications.LookaheadHours) * time.Hour
}
