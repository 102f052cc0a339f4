package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailpilot/internal/app"
	"github.com/nhle/mailpilot/internal/enrich"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/remote"
	"github.com/nhle/mailpilot/internal/store"
	appsync "github.com/nhle/mailpilot/internal/sync"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	var (
		configPath  = flag.String("config", model.DefaultConfigPath(), "Config file path")
		backendURL  = flag.String("backend", "", "Backend base URL (overrides config)")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mailpilot version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}

	client := remote.NewClient(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second,
	)
	cache := store.New()
	profiles := enrich.New(client, cfg.PollInterval(), cfg.PollDeadline())
	controller := appsync.NewController(
		client, cache,
		cfg.Fetch.Limit, cfg.Fetch.WindowDays,
	)

	program := tea.NewProgram(
		app.New(cache, controller, profiles),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		log.Fatalf("error running mailpilot: %v", err)
	}
}
