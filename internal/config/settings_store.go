package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ClientSettings are the connection preferences remembered between runs.
type ClientSettings struct {
	BaseURL     string `json:"base_url"`
	AutoConnect bool   `json:"auto_connect"`
	Debug       bool   `json:"debug"`
	Retries     int    `json:"retries,omitempty"`
}

func SettingsPath() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDirName, "client-settings.json"), nil
}

func LoadSettings() (ClientSettings, error) {
	path, err := SettingsPath()
	if err != nil {
		return ClientSettings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientSettings{}, err
	}
	var settings ClientSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return ClientSettings{}, err
	}
	return settings, nil
}

func SaveSettings(settings ClientSettings) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// MergeOptionsWithSettings fills options left unset on the command line
// from saved settings.
func MergeOptionsWithSettings(cli Options, saved ClientSettings) Options {
	if strings.TrimSpace(cli.BaseURL) == "" {
		cli.BaseURL = saved.BaseURL
	}
	if !cli.AutoConnect {
		cli.AutoConnect = saved.AutoConnect
	}
	if !cli.Debug {
		cli.Debug = saved.Debug
	}
	if cli.Retries == 0 && saved.Retries > 0 {
		cli.Retries = saved.Retries
	}
	return cli
}

func SettingsFromOptions(opts Options) ClientSettings {
	return ClientSettings{
		BaseURL:     strings.TrimSpace(opts.BaseURL),
		AutoConnect: opts.AutoConnect,
		Debug:       opts.Debug,
		Retries:     opts.Retries,
	}
}
