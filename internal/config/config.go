package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is everything spotwatch reads from its config file and environment.
type Config struct {
	Path              string
	APIURL            string
	Delay             time.Duration
	RequestsPerSecond float64
	LogFile           string
	LogLevel          string
	LogFormat         string
	Server            ServerConfig
	Notify            NotifyConfig
	Targets           []TargetEntry
}

// ServerConfig controls the optional status endpoint.
type ServerConfig struct {
	Listen string
}

// NotifyConfig selects notification channels.
type NotifyConfig struct {
	Command        []string
	Cooldown       time.Duration
	RedisAddr      string
	RedisPassword  string
	TelegramToken  string
	TelegramChatID int64
}

// TargetEntry is one raw monitoring request before name resolution.
type TargetEntry struct {
	Gym      string `toml:"gym"`
	Area     string `toml:"area"`
	Date     string `toml:"date"`
	TimeSlot string `toml:"time_slot"`
	Spots    int    `toml:"spots"`
}

const (
	defaultConfigPath        = "~/.config/spotwatch/config.toml"
	defaultAPIURL            = "https://api.toplogger.nu/v1"
	defaultDelay             = 240 * time.Second
	defaultRequestsPerSecond = 2
	defaultLogLevel          = "info"
	defaultLogFormat         = "text"
	dateLayout               = "2006-01-02"
)

// ErrNoTargets is returned when the config lists nothing to watch.
var ErrNoTargets = errors.New("config has no targets")

// Load reads the TOML config at path (the default location when empty) and
// merges secrets from the environment and any .env file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	loadDotEnv(filepath.Join(filepath.Dir(resolved), ".env"))
	loadDotEnv(".env")

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s not found: %w", resolved, err)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL            string        `toml:"api_url"`
		Delay             string        `toml:"delay"`
		RequestsPerSecond float64       `toml:"requests_per_second"`
		LogFile           string        `toml:"log_file"`
		LogLevel          string        `toml:"log_level"`
		LogFormat         string        `toml:"log_format"`
		Targets           []TargetEntry `toml:"targets"`
		Server            struct {
			Listen string `toml:"listen"`
		} `toml:"server"`
		Notify struct {
			Command        []string `toml:"command"`
			Cooldown       string   `toml:"cooldown"`
			RedisAddr      string   `toml:"redis_addr"`
			TelegramChatID int64    `toml:"telegram_chat_id"`
		} `toml:"notify"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Path:              resolved,
		APIURL:            strings.TrimSpace(raw.APIURL),
		RequestsPerSecond: raw.RequestsPerSecond,
		LogFile:           strings.TrimSpace(raw.LogFile),
		LogLevel:          strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		LogFormat:         strings.ToLower(strings.TrimSpace(raw.LogFormat)),
		Targets:           raw.Targets,
		Server:            ServerConfig{Listen: strings.TrimSpace(raw.Server.Listen)},
		Notify: NotifyConfig{
			Command:        raw.Notify.Command,
			RedisAddr:      strings.TrimSpace(raw.Notify.RedisAddr),
			RedisPassword:  os.Getenv("REDIS_PASSWORD"),
			TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
			TelegramChatID: raw.Notify.TelegramChatID,
		},
	}

	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}
	if cfg.LogFile != "" {
		cfg.LogFile = mustExpand(cfg.LogFile)
	}
	if chatID := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chatID != "" && cfg.Notify.TelegramChatID == 0 {
		parsed, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Notify.TelegramChatID = parsed
	}

	cfg.Delay, err = parseDuration("delay", raw.Delay, defaultDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.Notify.Cooldown, err = parseDuration("notify.cooldown", raw.Notify.Cooldown, 0)
	if err != nil {
		return Config{}, err
	}

	if len(cfg.Targets) == 0 {
		return Config{}, fmt.Errorf("%s: %w", resolved, ErrNoTargets)
	}
	return cfg, nil
}

// DefaultLogPath is where logs go when the dashboard owns the terminal.
func DefaultLogPath() string {
	return mustExpand("~/.local/share/spotwatch/spotwatch.log")
}

// EntryError reports a malformed target entry.
type EntryError struct {
	Index  int
	Entry  TargetEntry
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("target #%d (gym=%q area=%q date=%q time_slot=%q spots=%d): %s",
		e.Index+1, e.Entry.Gym, e.Entry.Area, e.Entry.Date, e.Entry.TimeSlot, e.Entry.Spots, e.Reason)
}

// Validate checks the fields of the entry at index.
func (e TargetEntry) Validate(index int) error {
	fail := func(reason string) error {
		return &EntryError{Index: index, Entry: e, Reason: reason}
	}
	switch {
	case strings.TrimSpace(e.Gym) == "":
		return fail("gym is required")
	case strings.TrimSpace(e.Area) == "":
		return fail("area is required")
	case strings.TrimSpace(e.TimeSlot) == "":
		return fail("time_slot is required")
	case e.Spots <= 0:
		return fail("spots must be a positive integer")
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(e.Date)); err != nil {
		return fail("date must look like 2006-01-02")
	}
	return nil
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", key, trimmed)
	}
	return d, nil
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
