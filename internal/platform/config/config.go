// Package config resolves the coach root and loads optional settings from
// <root>/config.yaml and COACH_* environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix   = "COACH_"
	RootEnv     = EnvPrefix + "ROOT"
	DefaultDir  = ".agent-coach"
	FileName    = "config.yaml"
	maxFileSize = 1 << 20
)

type Config struct {
	Root    string        `koanf:"-"`
	DBPath  string        `koanf:"db_path"`
	Log     LogConfig     `koanf:"log"`
	Reflect ReflectConfig `koanf:"reflect"`
}

type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	Console    bool   `koanf:"console"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

type ReflectConfig struct {
	MaxAgeDays int `koanf:"max_age_days"`
	MaxCount   int `koanf:"max_count"`
}

// Options carries the command-line overrides. Empty fields fall back to the environment
// and then to defaults.
type Options struct {
	Root       string
	ConfigPath string
}

func Default(root string) Config {
	return Config{
		Root:   root,
		DBPath: filepath.Join(root, ".coach", "coach.db"),
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(root, "logs", "coach.log"),
			Console:    false,
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Reflect: ReflectConfig{MaxAgeDays: 7, MaxCount: 20},
	}
}

// Load resolves the root (flag, then COACH_ROOT, then ~/.agent-coach) and layers
// defaults < config file < environment.
func Load(opts Options) (Config, error) {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return Config{}, err
	}
	cfg := Default(root)

	k := koanf.New(".")
	path := opts.ConfigPath
	if path == "" {
		path = filepath.Join(root, FileName)
	}
	content, err := readConfigFile(path, opts.ConfigPath != "")
	if err != nil {
		return Config{}, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Root = root
	cfg.DBPath = underRoot(root, cfg.DBPath)
	if cfg.Log.File != "" {
		cfg.Log.File = underRoot(root, cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("coach root is required")
	}
	if c.Reflect.MaxAgeDays < 0 {
		return fmt.Errorf("reflect.max_age_days must be non-negative")
	}
	if c.Reflect.MaxCount < 0 {
		return fmt.Errorf("reflect.max_count must be non-negative")
	}
	return nil
}

func (c Config) SessionsDir() string    { return filepath.Join(c.Root, "sessions") }
func (c Config) PatternsDir() string    { return filepath.Join(c.Root, "patterns") }
func (c Config) ReflectionsDir() string { return filepath.Join(c.Root, "reflections") }

func resolveRoot(flagRoot string) (string, error) {
	root := strings.TrimSpace(flagRoot)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(RootEnv))
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, DefaultDir)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve coach root: %w", err)
	}
	return abs, nil
}

// readConfigFile returns nil content when an implicit config file is absent.
func readConfigFile(path string, explicit bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// envKey maps COACH_LOG_MAX_SIZE_MB to log.max_size_mb: the first segment after the
// prefix names the section, the rest is the field. COACH_ROOT is resolved separately.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	switch key {
	case "root":
		return ""
	case "db_path":
		return key
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

func underRoot(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
