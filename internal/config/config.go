package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendREST     = "rest"
	BackendWorkbook = "workbook"

	StoreSQLite = "sqlite"
	StoreFiles  = "files"

	envPrefix = "ADOLOG"
)

// Config is the root configuration for adolog. Values come from, in rising
// priority: built-in defaults, ~/.adolog/config.yaml, a .env file in the
// working directory and ADOLOG_* environment variables.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DataDir   string `mapstructure:"data_dir"`
	// Backend selects the time log store: "rest" or "workbook".
	Backend string `mapstructure:"backend"`

	OAuth  OAuthConfig  `mapstructure:"oauth"`
	Graph  GraphConfig  `mapstructure:"graph"`
	REST   RESTConfig   `mapstructure:"rest"`
	DevOps DevOpsConfig `mapstructure:"devops"`
	Server ServerConfig `mapstructure:"server"`
}

// OAuthConfig holds the Microsoft identity platform endpoints and the app
// registration used for the authorization code flow.
type OAuthConfig struct {
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	Scope        string `mapstructure:"scope"`
}

// GraphConfig locates the Excel workbook table used by the workbook backend.
type GraphConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	WorkbookPath string `mapstructure:"workbook_path"`
	TableName    string `mapstructure:"table_name"`
}

type RESTConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type DevOpsConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	ProfileURL    string `mapstructure:"profile_url"`
	Organization  string `mapstructure:"organization"`
	DeveloperName string `mapstructure:"developer_name"`
}

// ServerConfig configures `adolog serve`, the reference REST log backend.
type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Store string `mapstructure:"store"`
}

var defaults = map[string]any{
	"log_level":  "info",
	"log_format": "text",
	"data_dir":   "~/.adolog",
	"backend":    BackendREST,

	"oauth.auth_url":      "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
	"oauth.token_url":     "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	"oauth.client_id":     "",
	"oauth.client_secret": "",
	"oauth.redirect_uri":  "http://localhost:8765/callback",
	"oauth.scope":         "https://graph.microsoft.com/.default offline_access",

	"graph.base_url":      "https://graph.microsoft.com/v1.0",
	"graph.workbook_path": "/ChromeExt - DB/DB.xlsx",
	"graph.table_name":    "LogTable",

	"rest.base_url": "http://localhost:8080",

	"devops.base_url":       "https://dev.azure.com",
	"devops.profile_url":    "https://app.vssps.visualstudio.com",
	"devops.organization":   "",
	"devops.developer_name": "",

	"server.addr":  "localhost:8080",
	"server.store": StoreSQLite,
}

// configTemplate is written on first run so users can discover the options.
const configTemplate = `# adolog configuration - ~/.adolog/config.yaml
#
# Every value is optional and can also be set through ADOLOG_<SECTION>_<KEY>
# environment variables, e.g. ADOLOG_OAUTH_CLIENT_ID.

# debug | info | warn | error
log_level: info
# text | json
log_format: text

# Where time logs are stored: "rest" (log backend) or "workbook" (Excel table
# in OneDrive, reached through Microsoft Graph).
backend: rest

oauth:
  # Azure app registration used for the sign-in flow.
  client_id: ""
  # Usually set with: adolog settings set --client-secret
  client_secret: ""
  redirect_uri: http://localhost:8765/callback

graph:
  workbook_path: /ChromeExt - DB/DB.xlsx
  table_name: LogTable

rest:
  base_url: http://localhost:8080

devops:
  organization: ""
  # Name written into new logs. Falls back to the Azure DevOps profile.
  developer_name: ""
`

// DefaultFile returns the path to ~/.adolog/config.yaml.
func DefaultFile() (string, error) {
	dir, err := homedir.Expand(defaults["data_dir"].(string))
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration. An empty file means the default location,
// which is created with an annotated template on first run.
func Load(file string) (Config, error) {
	if err := LoadDotEnv(os.Getwd); err != nil {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := file != ""
	if !explicit {
		var err error
		if file, err = DefaultFile(); err != nil {
			return Config{}, err
		}
	}
	file, err := homedir.Expand(file)
	if err != nil {
		return Config{}, err
	}

	_, statErr := os.Stat(file)
	switch {
	case statErr == nil:
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", file, err)
		}
	case errors.Is(statErr, fs.ErrNotExist) && explicit:
		return Config{}, fmt.Errorf("config file %s does not exist", file)
	case errors.Is(statErr, fs.ErrNotExist):
		if err := writeDefault(file); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", file, err)
		}
	default:
		return Config{}, fmt.Errorf("reading config file %s: %w", file, statErr)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.DataDir, err = homedir.Expand(cfg.DataDir); err != nil {
		return Config{}, fmt.Errorf("expanding data_dir: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads '.env' from the working directory into the process
// environment without overriding variables that are already set.
func LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}
	err = godotenv.Load(filepath.Join(wd, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendREST, BackendWorkbook:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendREST, BackendWorkbook)
	}
	switch c.Server.Store {
	case StoreSQLite, StoreFiles:
	default:
		return fmt.Errorf("unknown server store %q (want %q or %q)", c.Server.Store, StoreSQLite, StoreFiles)
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
