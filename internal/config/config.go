package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const appDirName = "logviewer"

type Options struct {
	BaseURL        string        `long:"base-url" env:"LOGVIEWER_BASE_URL" description:"Backend base URL (e.g. http://127.0.0.1:3000)"`
	SettingsFile   string        `long:"settings-file" env:"LOGVIEWER_SETTINGS_FILE" description:"Stream settings file (defaults to the user config directory)"`
	LogDir         string        `long:"log-dir" env:"LOGVIEWER_LOG_DIR" description:"Directory for persisted client logs"`
	RequestTimeout time.Duration `long:"request-timeout" env:"LOGVIEWER_REQUEST_TIMEOUT" default:"10s" description:"Timeout for a single backend command"`
	Retries        int           `long:"retries" env:"LOGVIEWER_RETRIES" default:"0" description:"Transport retries for failed backend commands"`
	AutoConnect    bool          `long:"auto-connect" env:"LOGVIEWER_AUTO_CONNECT" description:"Connect to the backend on startup"`
	Debug          bool          `long:"debug" env:"LOGVIEWER_DEBUG" description:"Enable verbose debug output"`
}

type APIEndpoints struct {
	BaseURL    string
	CommandURL string
	EventsURL  string
}

const (
	commandPath = "/command"
	eventsPath  = "/events"
)

func ParseOptions(args []string) (Options, error) {
	_ = godotenv.Load()
	opts := Options{}
	parser := flags.NewParser(&opts, flags.Default)
	if args == nil {
		args = os.Args[1:]
	}
	if _, err := parser.ParseArgs(args); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func ValidateRequired(opts Options) error {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return errors.New("backend base URL is required")
	}
	if opts.Retries < 0 {
		return errors.New("retries must not be negative")
	}
	return nil
}

func BuildEndpoints(rawBaseURL string) (APIEndpoints, error) {
	apiBaseURL, err := buildAPIBaseURL(rawBaseURL)
	if err != nil {
		return APIEndpoints{}, err
	}
	return APIEndpoints{
		BaseURL:    apiBaseURL,
		CommandURL: apiBaseURL + commandPath,
		EventsURL:  apiBaseURL + eventsPath,
	}, nil
}

func buildAPIBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	parsed, err := url.Parse(value)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("expected absolute URL like http://127.0.0.1:3000")
	}
	if !strings.EqualFold(parsed.Scheme, "http") && !strings.EqualFold(parsed.Scheme, "https") {
		return "", errors.New("base URL scheme must be http or https")
	}

	// Pasted command or events URLs collapse to the API root.
	parsed.Path = "/api"
	parsed.RawPath = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return strings.TrimRight(parsed.String(), "/"), nil
}

// StreamSettingsPath resolves the per-stream settings document.
func StreamSettingsPath(opts Options) (string, error) {
	if path := strings.TrimSpace(opts.SettingsFile); path != "" {
		return path, nil
	}
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDirName, "streams.json"), nil
}
