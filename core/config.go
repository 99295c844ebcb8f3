package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		AppName  string
		Build    string

		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		Server   ServerConfig
		Database DatabaseConfig

		SendgridApiKey string
		RollbarToken   string

		Paystack  PaystackConfig
		Video     VideoConfig
		Assistant AssistantConfig
		Filestore FilestoreConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	PaystackConfig struct {
		BaseURL   string
		SecretKey string
	}

	VideoConfig struct {
		ApiKey          string
		ApiSecret       string
		TokenExpiration time.Duration
	}

	AssistantConfig struct {
		BaseURL string
		ApiKey  string
		Model   string
		// StubMode substitutes templated placeholder responses when the
		// generation service is entirely unconfigured. This is a deliberate
		// degraded mode, not error swallowing.
		StubMode bool
	}

	FilestoreConfig struct {
		BaseURL string
		Bucket  string
		ApiKey  string
		// LocalDir backs the local filestore in DEV/TEST.
		LocalDir string
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment,
// optionally seeded from config/.env.<env> if present.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "OOS")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3lc0me-t0-00s!ch4ng3-m3-1n-pr0d")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")

	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("shutdownTimeout", 20*time.Second)

	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "oos")
	conf.SetDefault("databaseUser", "")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", 5432)
	conf.SetDefault("databaseDisableTls", true)

	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("paystackBaseUrl", "https://api.paystack.co")
	conf.SetDefault("paystackSecretKey", "")

	conf.SetDefault("videoApiKey", "")
	conf.SetDefault("videoApiSecret", "")
	conf.SetDefault("videoTokenExpiration", 4*time.Hour)

	conf.SetDefault("assistantBaseUrl", "https://generativelanguage.googleapis.com")
	conf.SetDefault("assistantApiKey", "")
	conf.SetDefault("assistantModel", "gemini-pro")

	conf.SetDefault("filestoreBaseUrl", "")
	conf.SetDefault("filestoreBucket", "startup-documents")
	conf.SetDefault("filestoreApiKey", "")
	conf.SetDefault("filestoreLocalDir", os.TempDir())

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetInt("serverPort"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           conf.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetInt("databasePort"),
			DisableTLS:    conf.GetBool("databaseDisableTls"),
		},
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		Paystack: PaystackConfig{
			BaseURL:   conf.GetString("paystackBaseUrl"),
			SecretKey: conf.GetString("paystackSecretKey"),
		},
		Video: VideoConfig{
			ApiKey:          conf.GetString("videoApiKey"),
			ApiSecret:       conf.GetString("videoApiSecret"),
			TokenExpiration: conf.GetDuration("videoTokenExpiration"),
		},
		Assistant: AssistantConfig{
			BaseURL:  conf.GetString("assistantBaseUrl"),
			ApiKey:   conf.GetString("assistantApiKey"),
			Model:    conf.GetString("assistantModel"),
			StubMode: conf.GetString("assistantApiKey") == "",
		},
		Filestore: FilestoreConfig{
			BaseURL:  conf.GetString("filestoreBaseUrl"),
			Bucket:   conf.GetString("filestoreBucket"),
			ApiKey:   conf.GetString("filestoreApiKey"),
			LocalDir: conf.GetString("filestoreLocalDir"),
		},
	}
}
