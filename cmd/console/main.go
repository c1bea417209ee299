package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/jwebster45206/storyloom/pkg/engine"
	"github.com/jwebster45206/storyloom/pkg/gateway"
)

type ConsoleConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8787"`
	Timeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5m"`
	ExportDir  string        `env:"EXPORT_DIR" envDefault:"."`
}

func main() {
	_ = godotenv.Load()

	cfg := &ConsoleConfig{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	client := gateway.New(cfg.APIBaseURL, gateway.WithHTTPClient(&http.Client{
		Timeout: cfg.Timeout,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := client.Health(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s: %v\nTry: go run ./cmd/api\n", cfg.APIBaseURL, err)
		os.Exit(1)
	}

	// The observer is installed before the program exists, so snapshots are
	// forwarded through a channel drained once the program is running.
	updates := make(chan engine.Snapshot, 16)
	eng := engine.New(client, engine.WithObserver(func(s engine.Snapshot) {
		select {
		case updates <- s:
		default:
			// The UI re-reads state after each turn, so a dropped
			// intermediate snapshot is harmless.
		}
	}))

	p := tea.NewProgram(NewConsoleUI(cfg, client, eng), tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		for s := range updates {
			p.Send(snapshotMsg(s))
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
