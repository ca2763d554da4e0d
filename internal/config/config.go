// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// SessionSecret signs the session cookie value.
	SessionSecret string `json:"session_secret"`

	// Env is the deployment environment; "production" turns on the
	// Secure cookie flag.
	Env string `json:"env"`

	// LogLevel sets the zap level (Debug, Info, Warn, Error).
	LogLevel string `json:"log_level"`

	// SpreadsheetID identifies the Google Sheet acting as system of record.
	SpreadsheetID string `json:"spreadsheet_id"`

	// ClienteRange is the A1 range of the client sheet, header included.
	ClienteRange string `json:"cliente_range"`

	// UsuarioRange is the A1 range of the access-credentials sheet.
	UsuarioRange string `json:"usuario_range"`

	// GoogleCredentials is an inline service-account JSON blob. When set it
	// takes priority over the credential file paths.
	GoogleCredentials string `json:"-"`

	// SecretFile and LocalFile are fallback paths to a service-account key
	// file; the first one that exists wins.
	SecretFile string `json:"secret_file"`
	LocalFile  string `json:"local_file"`

	// PublicCSV switches the sheet adapter to the unauthenticated CSV
	// export endpoint instead of the Sheets API.
	PublicCSV bool `json:"public_csv"`

	// AuthSource selects where logins are resolved: "sheets" or "local".
	AuthSource string `json:"auth_source"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", ":3000", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.SpreadsheetID, "s", "", "google spreadsheet id")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional config file and
// environment variables to set configuration values. Environment variables
// have the highest priority. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	// Load env from .env when present.
	_ = godotenv.Load()

	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	envString(&options.Addr, "SERVER_ADDRESS")
	envString(&options.DatabaseDSN, "DATABASE_DSN")
	envString(&options.SessionSecret, "SESSION_SECRET")
	envString(&options.Env, "APP_ENV")
	envString(&options.LogLevel, "LOG_LEVEL")
	envString(&options.SpreadsheetID, "SPREADSHEET_ID")
	envString(&options.ClienteRange, "CLIENTE_RANGE")
	envString(&options.UsuarioRange, "USUARIO_RANGE")
	envString(&options.GoogleCredentials, "GOOGLE_CREDENTIALS")
	envString(&options.SecretFile, "GOOGLE_SECRET_FILE")
	envString(&options.LocalFile, "GOOGLE_CREDENTIALS_FILE")
	envString(&options.AuthSource, "AUTH_SOURCE")
	if v := os.Getenv("SHEETS_PUBLIC_CSV"); v == "1" || v == "true" {
		options.PublicCSV = true
	}

	applyDefaults(options)

	return options
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(o *Options) {
	if o.SessionSecret == "" {
		o.SessionSecret = "seu-segredo-super-secreto-mude-isso"
	}
	if o.LogLevel == "" {
		o.LogLevel = "Info"
	}
	if o.ClienteRange == "" {
		o.ClienteRange = "Banco!A:I"
	}
	if o.UsuarioRange == "" {
		o.UsuarioRange = "DADOS DE ACESSO!A:C"
	}
	if o.SecretFile == "" {
		o.SecretFile = "/etc/secrets/service-account.json"
	}
	if o.LocalFile == "" {
		o.LocalFile = "credentials.json"
	}
	if o.AuthSource == "" {
		o.AuthSource = "sheets"
	}
}
