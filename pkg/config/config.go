// Package config provides configuration management for GuardBot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost        string
	MQTTPort        string
	MQTTUser        string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Moderation
	Admins               []string
	CommandPrefix        string
	NumberOfWarnsToBan   int
	ExpireWarnsAfter     time.Duration
	DeleteEphemeralAfter time.Duration

	// Web Server
	Port         string
	AllowedHosts string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "GuardBot"),

		// MQTT
		MQTTHost:        getEnv("MQTT_Host", "localhost"),
		MQTTPort:        getEnv("MQTT_Port", "1883"),
		MQTTUser:        getEnv("MQTT_User", ""),
		MQTTPassword:    getEnv("MQTT_Password", ""),
		MQTTTopicPrefix: getEnv("MQTT_TopicPrefix", "guardbot"),

		// Moderation
		Admins:               getEnvList("admins"),
		CommandPrefix:        getEnv("commandPrefix", "!"),
		NumberOfWarnsToBan:   getEnvInt("numberOfWarnsToBan", 3),
		ExpireWarnsAfter:     getEnvDuration("expireWarnsAfter", 0),
		DeleteEphemeralAfter: getEnvDuration("deleteEphemeralAfter", 5*time.Minute),

		// Web Server
		Port:         getEnv("PORT", "3000"),
		AllowedHosts: getEnv("allowedHosts", ""),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvInt reads an integer variable, falling back to defaultValue when it is
// missing or malformed
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration reads a duration such as "720h" or "5m". A bare number is
// taken as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
