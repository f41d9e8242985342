// Package main is the entry point for the Genboard TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/a-linden/genboard-tui/internal/app"
	"github.com/a-linden/genboard-tui/internal/config"
	"github.com/a-linden/genboard-tui/internal/services"
	"github.com/a-linden/genboard-tui/internal/ui/tabs/info"
	modelstab "github.com/a-linden/genboard-tui/internal/ui/tabs/models"
	"github.com/a-linden/genboard-tui/internal/ui/tabs/overview"
	"github.com/a-linden/genboard-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize the service manager
	// This starts the generations and models-usage pollers and the env watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		overview.New(state, svcManager), // Tab 0: Overview - generation volume by tier
		modelstab.New(state),            // Tab 1: Models - per-model usage
		info.New(state, cfg),            // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Genboard TUI - Generation analytics monitor

Usage:
  genboard [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Overview, Models, Info)
  Tab/Shift+Tab   Navigate between tabs
  t/T             Cycle the tier filter (Overview tab)
  j/k, Up/Down    Navigate lists
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  ANALYTICS_TOKEN               API token for the analytics backend
  ANALYTICS_BASE_URL            Analytics backend root URL
  GENERATIONS_REFRESH_INTERVAL  Generations polling interval (default: 30s)
  MODELS_REFRESH_INTERVAL       Models usage polling interval (default: 60s)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/genboard/.env
  - ~/.genboard/.env

For more information, visit: https://github.com/a-linden/genboard-tui`)
}
