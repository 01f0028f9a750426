package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file, relative to the process working directory.
const ConfigPath = "config/viewer.yaml"

// Environment variables that override the file.
const (
	EnvDetectURL = "SLOTVIEW_DETECT_URL"
	EnvModelPath = "SLOTVIEW_MODEL_PATH"
	EnvTimeout   = "SLOTVIEW_TIMEOUT"
)

// Config holds viewer settings. Loaded from YAML, then overridden from the environment.
type Config struct {
	// DetectURL is the base URL of the slot detection service; /api/detect_slots is appended.
	DetectURL string `yaml:"detect_url"`
	// RequestTimeout bounds a single detection request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ModelPath is the glTF asset drawn for each slot.
	ModelPath string `yaml:"model_path"`
	// PlaceholderPath is the YAML box definition used when ModelPath cannot be loaded.
	PlaceholderPath string `yaml:"placeholder_path"`

	WindowTitle  string `yaml:"window_title"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	TargetFPS    int    `yaml:"target_fps"`
	MaxTexture   int    `yaml:"max_texture"`
	ShowFPS      bool   `yaml:"show_fps"`
	LogPath      string `yaml:"log_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DetectURL:       "http://localhost:8000",
		RequestTimeout:  30 * time.Second,
		ModelPath:       "models/caixa.gltf",
		PlaceholderPath: "assets/primitives/box.yaml",
		WindowTitle:     "slot viewer",
		WindowWidth:     1280,
		WindowHeight:    720,
		TargetFPS:       60,
		MaxTexture:      2048,
		ShowFPS:         false,
		LogPath:         "logs/viewer.log",
	}
}

// Validate replaces unusable values with defaults.
func (c *Config) Validate() {
	d := Default()
	if c.DetectURL == "" {
		c.DetectURL = d.DetectURL
	}
	if c.RequestTimeout < 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.ModelPath == "" {
		c.ModelPath = d.ModelPath
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		c.WindowWidth, c.WindowHeight = d.WindowWidth, d.WindowHeight
	}
	if c.TargetFPS <= 0 {
		c.TargetFPS = d.TargetFPS
	}
	if c.MaxTexture <= 0 {
		c.MaxTexture = d.MaxTexture
	}
	if c.WindowTitle == "" {
		c.WindowTitle = d.WindowTitle
	}
}

// Load reads path (ConfigPath when empty) over the defaults and applies environment overrides.
// A missing file is not an error. A malformed file returns the defaults (with overrides) and the error.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigPath
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		err = nil
	case err != nil:
		err = errors.Wrap(err, "config: read")
	default:
		if uerr := yaml.Unmarshal(data, &cfg); uerr != nil {
			cfg = Default()
			err = errors.Wrapf(uerr, "config: parse %s", path)
		}
	}
	if oerr := cfg.applyEnv(); oerr != nil && err == nil {
		err = oerr
	}
	cfg.Validate()
	return cfg, err
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDetectURL); v != "" {
		c.DetectURL = v
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Plain numbers are seconds.
			secs, aerr := strconv.Atoi(v)
			if aerr != nil {
				return errors.Wrapf(err, "config: %s", EnvTimeout)
			}
			d = time.Duration(secs) * time.Second
		}
		c.RequestTimeout = d
	}
	return nil
}

// Save writes c as YAML to path, creating the directory if needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "config: save")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "config: encode")
	}
	return os.WriteFile(path, data, 0644)
}
