package core

import (
	"fmt"
	"log"
	"net"
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
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Report   ReportConfig
		Server   ServerConfig
		Database DatabaseConfig
		Digest   DigestConfig
	}

	ReportConfig struct {
		Sessions  int // number of aulas in the course
		MinLength int // minimum raw report length accepted by the API
	}

	ServerConfig struct {
		Host            string
		Port            string
		DebugHost       string
		ShutdownTimeout time.Duration
		CORSOrigins     []string
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string // postgres only; creates the app user & database when set
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	DigestConfig struct {
		Recipients []string
	}
)

// NewConfig loads the configuration for the environment named by $ENV (DEV by default).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Florescendo Talentos")
	conf.SetDefault("secretKey", "s3cr3t-fl0r3sc3nd0-t4l3nt0s-ch4ng3-m3")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("defaultFromEmail", "Florescendo Talentos <noreply@localhost>")

	conf.SetDefault("report_sessions", 60)
	conf.SetDefault("report_minLength", 50)

	conf.SetDefault("server_host", "0.0.0.0")
	conf.SetDefault("server_port", "3000")
	conf.SetDefault("server_debugHost", "0.0.0.0:4000")
	conf.SetDefault("server_shutdownTimeout", 5*time.Second)
	conf.SetDefault("server_corsOrigins", []string{"*"})

	conf.SetDefault("database_engine", "postgres")
	conf.SetDefault("database_host", "localhost")
	conf.SetDefault("database_port", "5432")
	conf.SetDefault("database_name", "florescendo")
	conf.SetDefault("database_user", "postgres")
	conf.SetDefault("database_password", "postgres")
	conf.SetDefault("database_adminUser", "")
	conf.SetDefault("database_adminPassword", "")
	conf.SetDefault("database_disableTLS", true)
	conf.SetDefault("database_path", "florescendo.db")

	conf.SetDefault("digest_recipients", []string{})

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
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
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		Report: ReportConfig{
			Sessions:  conf.GetInt("report_sessions"),
			MinLength: conf.GetInt("report_minLength"),
		},
		Server: ServerConfig{
			Host:            conf.GetString("server_host"),
			Port:            conf.GetString("server_port"),
			DebugHost:       conf.GetString("server_debugHost"),
			ShutdownTimeout: conf.GetDuration("server_shutdownTimeout"),
			CORSOrigins:     conf.GetStringSlice("server_corsOrigins"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database_engine"),
			Host:          conf.GetString("database_host"),
			Port:          conf.GetString("database_port"),
			Name:          conf.GetString("database_name"),
			User:          conf.GetString("database_user"),
			Password:      conf.GetString("database_password"),
			AdminUser:     conf.GetString("database_adminUser"),
			AdminPassword: conf.GetString("database_adminPassword"),
			DisableTLS:    conf.GetBool("database_disableTLS"),
			Path:          conf.GetString("database_path"),
		},
		Digest: DigestConfig{
			Recipients: conf.GetStringSlice("digest_recipients"),
		},
	}
}

// NewTestConfig returns a Config suited for tests: sqlite in memory, test mode on.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "Florescendo Talentos",
		SecretKey:        "test-secret",
		defaultFromEmail: "Florescendo Talentos <noreply@localhost>",
		Report:           ReportConfig{Sessions: 60, MinLength: 50},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            "3000",
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{Engine: "sqlite3", Path: ":memory:"},
	}
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (conf *Config) DigestRecipients() []mail.Address {
	addrs := make([]mail.Address, 0, len(conf.Digest.Recipients))
	for _, r := range conf.Digest.Recipients {
		if addr, err := mail.ParseAddress(r); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return addrs
}

func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, sc.Port)
}

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", dc.Host, dc.Port)
}
