package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const minimalTargets = `
[[targets]]
gym = "monk"
area = "up"
date = "2024-01-01"
time_slot = "09:00"
spots = 3
`

func TestLoad_MissingConfigFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, minimalTargets)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Delay != defaultDelay {
		t.Fatalf("Delay = %v, want %v", cfg.Delay, defaultDelay)
	}
	if cfg.RequestsPerSecond != defaultRequestsPerSecond {
		t.Fatalf("RequestsPerSecond = %v, want %v", cfg.RequestsPerSecond, defaultRequestsPerSecond)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("log settings = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Notify.Cooldown != 0 {
		t.Fatalf("Cooldown = %v, want 0", cfg.Notify.Cooldown)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
	want := TargetEntry{Gym: "monk", Area: "up", Date: "2024-01-01", TimeSlot: "09:00", Spots: 3}
	if len(cfg.Targets) != 1 || cfg.Targets[0] != want {
		t.Fatalf("Targets = %#v, want %#v", cfg.Targets, want)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	path := writeConfig(t, `
api_url = "  http://127.0.0.1:9000/v1  "
delay = "90s"
requests_per_second = 0.5
log_file = "  ~/spotwatch.log  "
log_level = " DEBUG "
log_format = "json"

[server]
listen = " :8089 "

[notify]
command = ["notify-send", "spotwatch"]
cooldown = "15m"
redis_addr = "localhost:6379"
telegram_chat_id = 42
`+minimalTargets)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9000/v1" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Delay != 90*time.Second || cfg.Notify.Cooldown != 15*time.Minute {
		t.Fatalf("durations = %v/%v, want 90s/15m", cfg.Delay, cfg.Notify.Cooldown)
	}
	if cfg.RequestsPerSecond != 0.5 {
		t.Fatalf("RequestsPerSecond = %v, want 0.5", cfg.RequestsPerSecond)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log settings = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Server.Listen != ":8089" {
		t.Fatalf("Server.Listen = %q", cfg.Server.Listen)
	}
	if len(cfg.Notify.Command) != 2 || cfg.Notify.Command[0] != "notify-send" {
		t.Fatalf("Notify.Command = %v", cfg.Notify.Command)
	}
	if cfg.Notify.TelegramToken != "123:abc" || cfg.Notify.TelegramChatID != 42 {
		t.Fatalf("telegram = %q/%d", cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
	}
	if cfg.Notify.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q", cfg.Notify.RedisAddr)
	}
}

func TestLoad_ReadsDotEnvNextToConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	os.Unsetenv("TELEGRAM_CHAT_ID")

	path := writeConfig(t, minimalTargets)
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := os.WriteFile(envFile, []byte("TELEGRAM_BOT_TOKEN=from-dotenv\nTELEGRAM_CHAT_ID=77\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notify.TelegramToken != "from-dotenv" || cfg.Notify.TelegramChatID != 77 {
		t.Fatalf("telegram = %q/%d, want from-dotenv/77", cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid toml", `delay = [`, "parse config"},
		{"bad delay", `delay = "soon"` + minimalTargets, "parse delay"},
		{"negative cooldown", "[notify]\ncooldown = \"-1m\"\n" + minimalTargets, "parse notify.cooldown"},
		{"no targets", `delay = "1m"`, "no targets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTargetEntry_Validate(t *testing.T) {
	valid := TargetEntry{Gym: "monk", Area: "up", Date: "2024-01-01", TimeSlot: "09:00", Spots: 1}
	if err := valid.Validate(0); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *TargetEntry)
		reason string
	}{
		{"missing gym", func(e *TargetEntry) { e.Gym = " " }, "gym is required"},
		{"missing area", func(e *TargetEntry) { e.Area = "" }, "area is required"},
		{"missing time slot", func(e *TargetEntry) { e.TimeSlot = "" }, "time_slot is required"},
		{"zero spots", func(e *TargetEntry) { e.Spots = 0 }, "spots must be a positive integer"},
		{"bad date", func(e *TargetEntry) { e.Date = "01-01-2024" }, "date must look like"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid
			tt.mutate(&entry)
			err := entry.Validate(2)
			var entryErr *EntryError
			if !errors.As(err, &entryErr) {
				t.Fatalf("Validate error = %v, want *EntryError", err)
			}
			if entryErr.Index != 2 || !strings.Contains(err.Error(), tt.reason) {
				t.Fatalf("Validate error = %q, want reason %q", err.Error(), tt.reason)
			}
			if !strings.Contains(err.Error(), "target #3") {
				t.Fatalf("Validate error = %q, want it to name the entry", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestDefaultLogPath_UnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := DefaultLogPath()
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.FromSlash("/spotwatch.log")) {
		t.Fatalf("DefaultLogPath = %q, want it under HOME ending in spotwatch.log", got)
	}
}
