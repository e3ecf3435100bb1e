package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Policy   PolicyConfig
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port          int
	SnowflakeNode int64
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	DBName     string
	SSLMode    string
	TestDBName string // Separate database for testing
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret      string
	TokenTTLHours  int
	GoogleClientID string
}

// PolicyConfig holds the deployment-level authorization policy.
type PolicyConfig struct {
	// EmailDomain is the institutional suffix every account email must
	// carry, e.g. "inst.edu".
	EmailDomain string
	// AdminEmails is the allow-list of operator identities. Admin status is
	// always derived from this list, never stored on an account.
	AdminEmails []string
	// SignupDefaultHost controls whether accounts created through the
	// Google flow start out with host privileges.
	SignupDefaultHost bool
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			SnowflakeNode: int64(getEnvAsInt("SNOWFLAKE_NODE", 1)),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			Username:   getEnv("DB_USERNAME", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			DBName:     getEnv("DB_NAME", "campusevents"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			TestDBName: getEnv("TEST_DB_NAME", "campusevents_test"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-here"),
			TokenTTLHours:  getEnvAsInt("TOKEN_TTL_HOURS", 24),
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Policy: PolicyConfig{
			EmailDomain:       getEnv("EMAIL_DOMAIN", "inst.edu"),
			AdminEmails:       getEnvAsSlice("ADMIN_EMAILS"),
			SignupDefaultHost: getEnvAsBool("SIGNUP_DEFAULT_HOST", false),
		},
	}
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}
