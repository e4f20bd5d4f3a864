package app

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		HTTPAddr:       ":0",
		StorageBackend: config.StorageMemory,
		CacheEnabled:   true,
		CacheTTL:       time.Minute,
		Simulation: config.SimulationConfig{
			BaseInterval: time.Second,
			DefaultOvers: 20,
			Seed:         42,
			BatchWorkers: 2,
			SeedData:     true,
		},
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.Server == nil || a.Server.Handler == nil {
		t.Fatalf("expected a configured server")
	}
	if got := len(a.Matches.Schedule()); got != 6 {
		t.Fatalf("expected six seeded fixtures on the schedule, got %d", got)
	}
	if a.Auto.State().HasLiveMatch {
		t.Fatalf("expected no live match after a fresh seed")
	}
}

func TestNew_LiveEventsReachAutoSimulator(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	if _, err := a.Matches.StartMatch(context.Background(), memory.TournamentIDPremierCup, memory.TournamentIDPremierCup+"-mum-vs-che"); err != nil {
		t.Fatalf("StartMatch error: %v", err)
	}
	if !a.Auto.State().HasLiveMatch {
		t.Fatalf("expected the auto simulator to see the live match")
	}
}

func TestNew_WithoutSeedData(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.Simulation.SeedData = false
	cfg.CacheEnabled = false

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer func() { _ = a.Close() }()

	if got := len(a.Matches.Schedule()); got != 0 {
		t.Fatalf("expected an empty schedule, got %d", got)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected an error for an empty address")
	}
}

func TestNew_ResultWebhookOnlyWhenConfigured(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer func() { _ = a.Close() }()
	if a.Webhook != nil {
		t.Fatalf("expected no webhook without a url")
	}

	cfg := memoryConfig()
	cfg.Webhook = config.WebhookConfig{URL: "https://hooks.example.com/results", Timeout: time.Second, QueueSize: 4}
	b, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer func() { _ = b.Close() }()
	if b.Webhook == nil {
		t.Fatalf("expected a webhook when a url is configured")
	}
}
