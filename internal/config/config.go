package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "REVERSI"

type Board struct {
	Cols int `mapstructure:"cols"`
	Rows int `mapstructure:"rows"`
	// Size is the board's edge in window pixels.
	Size int `mapstructure:"size"`
}

type Window struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Config struct {
	Mode             string        `mapstructure:"mode"`
	ServerURL        string        `mapstructure:"server_url"`
	Name             string        `mapstructure:"name"`
	Board            Board         `mapstructure:"board"`
	Window           Window        `mapstructure:"window"`
	Log              Log           `mapstructure:"log"`
	StorePath        string        `mapstructure:"store_path"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

var ErrInvalid = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "production")
	v.SetDefault("server_url", "ws://localhost:8080/ws/")
	v.SetDefault("name", "")
	v.SetDefault("board.cols", 8)
	v.SetDefault("board.rows", 8)
	v.SetDefault("board.size", 480)
	v.SetDefault("window.title", "Reversi")
	v.SetDefault("window.width", 720)
	v.SetDefault("window.height", 560)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("store_path", "reversi.db")
	v.SetDefault("handshake_timeout", "10s")
}

// Load reads the config file at path, if any, over the defaults, then
// applies REVERSI_* environment overrides (REVERSI_BOARD_COLS for
// board.cols). DEVELOPMENT=1 forces development mode.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	if Development() {
		c.Mode = "development"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: server_url: %v", ErrInvalid, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: server_url must be ws:// or wss://, got %q", ErrInvalid, c.ServerURL)
	}
	if c.Board.Cols <= 0 || c.Board.Rows <= 0 {
		return fmt.Errorf("%w: board must have rows and columns, got %dx%d",
			ErrInvalid, c.Board.Cols, c.Board.Rows)
	}
	if c.Board.Size <= 0 {
		return fmt.Errorf("%w: board.size must be positive", ErrInvalid)
	}
	if c.Window.Width < c.Board.Size || c.Window.Height < c.Board.Size {
		return fmt.Errorf("%w: window %dx%d cannot fit a %dpx board",
			ErrInvalid, c.Window.Width, c.Window.Height, c.Board.Size)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":              c.Mode,
		"server_url":        c.ServerURL,
		"name":              c.Name,
		"board_cols":        c.Board.Cols,
		"board_rows":        c.Board.Rows,
		"board_size":        c.Board.Size,
		"window_title":      c.Window.Title,
		"window_width":      c.Window.Width,
		"window_height":     c.Window.Height,
		"log_level":         c.Log.Level,
		"log_file":          c.Log.File,
		"store_path":        c.StorePath,
		"handshake_timeout": c.HandshakeTimeout.String(),
	}
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}
