// Package config loads the spotwatch TOML configuration.
//
// # Overview
//
// The config file lists the targets to watch plus a handful of runtime knobs.
// Secrets (Telegram bot token, Redis password) never live in the TOML file;
// they come from the environment, optionally seeded from a .env file next to
// the config or in the working directory.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/spotwatch/config.toml
//  3. A missing file is an error: there is nothing to watch without targets
//
// # TOML Format
//
//	api_url = "https://api.toplogger.nu/v1"
//	delay = "240s"
//	requests_per_second = 2
//	log_file = "~/.local/share/spotwatch/spotwatch.log"
//	log_level = "info"
//	log_format = "text"
//
//	[server]
//	listen = "127.0.0.1:8089"
//
//	[notify]
//	command = ["notify-send", "spotwatch"]
//	cooldown = "10m"
//	redis_addr = "localhost:6379"
//	telegram_chat_id = 123456
//
//	[[targets]]
//	gym = "monk"
//	area = "up"
//	date = "2024-01-01"
//	time_slot = "09:00"
//	spots = 3
//
// Every key except the targets is optional. Durations use Go syntax ("90s",
// "4m"). Tilde expansion is performed for the config path and log_file.
//
// # Environment
//
//   - TELEGRAM_BOT_TOKEN: enables the Telegram notifier
//   - TELEGRAM_CHAT_ID: chat to post to when telegram_chat_id is unset
//   - REDIS_PASSWORD: password for redis_addr
//
// # Target Entries
//
// Load does not validate targets; TargetEntry.Validate is called per entry at
// startup so that one malformed entry is reported by index and excluded while
// the rest of the targets still run.
package config
