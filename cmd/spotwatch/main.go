package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/spotwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config path (default ~/.config/spotwatch/config.toml)")
	delaySeconds := flag.Int("delay", 0, "seconds between polls of one target (overrides config delay)")
	dashboard := flag.Bool("tui", false, "show the terminal dashboard; logs go to the log file")
	listen := flag.String("listen", "", "serve /healthz, /api/targets and /metrics on this address")
	prefsPath := flag.String("prefs", "", "dashboard preferences path (default ~/.config/spotwatch/prefs.toml)")
	flag.Parse()

	if *delaySeconds < 0 {
		fmt.Fprintln(os.Stderr, "spotwatch: -delay must not be negative")
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		DelaySecs:  *delaySeconds,
		Listen:     *listen,
		Dashboard:  *dashboard,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "spotwatch: %v\n", err)
		return 1
	}
	return 0
}
