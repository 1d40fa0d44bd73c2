package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "PORT", "AMQP_URL", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.DBHost != "localhost" || cfg.DBPort != "3306" {
		t.Errorf("unexpected database defaults: %s:%s", cfg.DBHost, cfg.DBPort)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("expected RabbitMQ to be disabled by default, got %q", cfg.AMQPURL)
	}
	if cfg.DBMaxOpenConns != 25 {
		t.Errorf("expected 25 open connections, got %d", cfg.DBMaxOpenConns)
	}
}

func TestLoadFromEnv(t *testing.T) {
	testCases := []struct {
		name     string
		envValue string
		expected int
	}{
		{name: "Valid value", envValue: "7", expected: 7},
		{name: "Not a number", envValue: "seven", expected: 25},
		{name: "Negative", envValue: "-3", expected: 25},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("DB_MAX_OPEN_CONNS", testCase.envValue)
			t.Setenv("DB_HOST", "db.internal")

			cfg := Load()
			if cfg.DBMaxOpenConns != testCase.expected {
				t.Errorf("expected %d, got %d", testCase.expected, cfg.DBMaxOpenConns)
			}
			if cfg.DBHost != "db.internal" {
				t.Errorf("expected db.internal, got %s", cfg.DBHost)
			}
		})
	}
}
