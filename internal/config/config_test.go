package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageBackend != StorageMemory {
		t.Fatalf("expected memory backend by default, got %q", cfg.StorageBackend)
	}
	if cfg.ServiceName != "fantasy-cricket-api" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected service defaults: %q %q", cfg.ServiceName, cfg.HTTPAddr)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("expected info log level, got %s", cfg.LogLevel)
	}
	sim := cfg.Simulation
	if sim.BaseInterval != time.Second || sim.DefaultOvers != 20 || sim.BatchWorkers != 4 || sim.Seed != 0 || !sim.SeedData {
		t.Fatalf("unexpected simulation defaults: %+v", sim)
	}
	if !cfg.DBCircuitEnabled || cfg.DBCircuitFailureCount != 5 {
		t.Fatalf("unexpected circuit defaults: enabled=%v count=%d", cfg.DBCircuitEnabled, cfg.DBCircuitFailureCount)
	}
}

func TestLoad_StorageBackend(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("invalid backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "redis")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_BACKEND")
		}
	})

	t.Run("postgres requires DB_URL", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STORAGE_BACKEND=postgres without DB_URL")
		}
	})

	t.Run("postgres with DB_URL", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", " Postgres ")
		t.Setenv("DB_URL", "postgres://localhost:5432/cricket?sslmode=disable")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageBackend != StoragePostgres {
			t.Fatalf("unexpected backend: %q", cfg.StorageBackend)
		}
	})
}

func TestLoad_SimulationParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SIM_BASE_INTERVAL", "250ms")
	t.Setenv("SIM_DEFAULT_OVERS", "5")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_BATCH_WORKERS", "8")
	t.Setenv("SIM_SEED_DATA", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := SimulationConfig{
		BaseInterval: 250 * time.Millisecond,
		DefaultOvers: 5,
		Seed:         42,
		BatchWorkers: 8,
		SeedData:     false,
	}
	if cfg.Simulation != want {
		t.Fatalf("unexpected simulation config: %+v", cfg.Simulation)
	}
}

func TestLoad_SimulationValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cases := map[string][2]string{
		"zero interval":     {"SIM_BASE_INTERVAL", "0s"},
		"too many overs":    {"SIM_DEFAULT_OVERS", "51"},
		"no workers":        {"SIM_BATCH_WORKERS", "0"},
		"unparseable seed":  {"SIM_SEED", "abc"},
		"unparseable speed": {"SIM_BASE_INTERVAL", "fast"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "fantasy-cricket-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "fantasy-cricket-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_CacheAndCircuitValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("cache ttl must be positive", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "-1s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative CACHE_TTL")
		}
	})

	t.Run("circuit failure count must be positive", func(t *testing.T) {
		t.Setenv("DB_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for DB_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_Webhook(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("RESULT_WEBHOOK_URL", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Webhook.Enabled() || cfg.Webhook.Timeout != 5*time.Second || cfg.Webhook.Retries != 2 {
			t.Fatalf("unexpected webhook defaults: %+v", cfg.Webhook)
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("RESULT_WEBHOOK_URL", "https://hooks.example.com/results")
		t.Setenv("RESULT_WEBHOOK_RETRIES", "0")
		t.Setenv("RESULT_WEBHOOK_TIMEOUT", "2s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.Webhook.Enabled() || cfg.Webhook.Retries != 0 || cfg.Webhook.Timeout != 2*time.Second {
			t.Fatalf("unexpected webhook config: %+v", cfg.Webhook)
		}
	})

	t.Run("rejects relative url", func(t *testing.T) {
		t.Setenv("RESULT_WEBHOOK_URL", "/results")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for relative RESULT_WEBHOOK_URL")
		}
	})
}
