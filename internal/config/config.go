// Package config loads RoMagic settings from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"RoMagic/internal/export"
	"RoMagic/internal/removebg"
	"RoMagic/internal/render"
)

const (
	appDirName     = "romagic"
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "ROMAGIC"

	// legacyAPIKeyEnv is read for the API key when the prefixed one is unset.
	legacyAPIKeyEnv = "REMOVE_BG_API_KEY"
)

// Config keys.
const (
	KeyAPIKey       = "removebg.api_key"
	KeyEndpoint     = "removebg.endpoint"
	KeySize         = "removebg.size"
	KeyTimeout      = "removebg.timeout"
	KeyFormat       = "export.format"
	KeyQuality      = "export.quality"
	KeyFileName     = "export.filename"
	KeyRandomName   = "export.random_name"
	KeyHistoryDepth = "history.max_depth"
	KeyWindowWidth  = "window.width"
	KeyWindowHeight = "window.height"
)

type Config struct {
	RemoveBG RemoveBG
	Export   export.Options
	History  History
	Window   Window
}

type RemoveBG struct {
	APIKey   string
	Endpoint string
	Size     string
	Timeout  time.Duration
}

type History struct {
	MaxDepth int
}

type Window struct {
	Width, Height float32
}

// Client builds a remove.bg client from the settings.
func (r RemoveBG) Client() *removebg.Client {
	c := removebg.New(r.APIKey)
	c.Endpoint = r.Endpoint
	c.Size = r.Size
	c.HTTP.Timeout = r.Timeout
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyEndpoint, removebg.DefaultEndpoint)
	v.SetDefault(KeySize, removebg.DefaultSize)
	v.SetDefault(KeyTimeout, removebg.DefaultTimeout)
	v.SetDefault(KeyFormat, string(render.JPEG))
	v.SetDefault(KeyQuality, render.DefaultJPEGQuality)
	v.SetDefault(KeyFileName, export.DefaultFileName)
	v.SetDefault(KeyRandomName, false)
	v.SetDefault(KeyHistoryDepth, 100)
	v.SetDefault(KeyWindowWidth, 1200)
	v.SetDefault(KeyWindowHeight, 800)
}

// New returns a viper instance with defaults and environment bindings but no
// file. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyAPIKey, envPrefix+"_REMOVEBG_API_KEY", legacyAPIKeyEnv)
	return v
}

// Load reads configFile, or config.yaml from the default directory when
// configFile is empty. A missing default file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Printf("[CONFIG] Using %s", v.ConfigFileUsed())
	}
	return FromViper(v), nil
}

// FromViper decodes the settings, clamping values that make no sense.
func FromViper(v *viper.Viper) *Config {
	c := &Config{
		RemoveBG: RemoveBG{
			APIKey:   v.GetString(KeyAPIKey),
			Endpoint: v.GetString(KeyEndpoint),
			Size:     v.GetString(KeySize),
			Timeout:  v.GetDuration(KeyTimeout),
		},
		Export: export.Options{
			Format:     render.ParseFormat(v.GetString(KeyFormat)),
			Quality:    v.GetInt(KeyQuality),
			FileName:   v.GetString(KeyFileName),
			RandomName: v.GetBool(KeyRandomName),
		},
		History: History{MaxDepth: v.GetInt(KeyHistoryDepth)},
		Window: Window{
			Width:  float32(v.GetFloat64(KeyWindowWidth)),
			Height: float32(v.GetFloat64(KeyWindowHeight)),
		},
	}
	if c.RemoveBG.Timeout <= 0 {
		c.RemoveBG.Timeout = removebg.DefaultTimeout
	}
	if c.Export.Quality <= 0 || c.Export.Quality > 100 {
		c.Export.Quality = render.DefaultJPEGQuality
	}
	return c
}

// DefaultDir is $XDG_CONFIG_HOME/romagic, falling back to the OS config dir.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	root, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(root, appDirName), nil
}
