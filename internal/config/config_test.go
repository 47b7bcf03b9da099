package config

import "testing"

func TestValidate_InvalidBias(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Engine: EngineConfig{
			Bias: "aggressive",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid bias")
	}

	expected := `engine.bias must be one of uniform, mild, standard, high, extreme, got "aggressive"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBiases(t *testing.T) {
	validBiases := []string{"", "uniform", "mild", "standard", "high", "extreme"}

	for _, bias := range validBiases {
		t.Run("bias="+bias, func(t *testing.T) {
			cfg := Config{
				HTTP:   HTTPConfig{Port: 8080},
				Engine: EngineConfig{Bias: bias},
			}

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid bias %q: %v", bias, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Engine: EngineConfig{Workers: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative workers")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Engine.BatchSize != 64 {
		t.Errorf("expected BatchSize=64, got %d", cfg.Engine.BatchSize)
	}
	if cfg.Engine.Bias != "standard" {
		t.Errorf("expected Bias='standard', got %q", cfg.Engine.Bias)
	}
	if cfg.Engine.CacheCapacity != 100000 {
		t.Errorf("expected CacheCapacity=100000, got %d", cfg.Engine.CacheCapacity)
	}
	if cfg.Engine.StagnationLimit != 20 {
		t.Errorf("expected StagnationLimit=20, got %d", cfg.Engine.StagnationLimit)
	}
	if cfg.Engine.MaxIterations != 1000 {
		t.Errorf("expected MaxIterations=1000, got %d", cfg.Engine.MaxIterations)
	}
	if cfg.Storage.KeyPrefix != "hugure:" {
		t.Errorf("expected KeyPrefix='hugure:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.SnapshotTTLHrs != 72 {
		t.Errorf("expected SnapshotTTLHrs=72, got %d", cfg.Storage.SnapshotTTLHrs)
	}
}

func TestMustLoad_PanicsWhenConfigMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a missing config file")
		}
	}()
	MustLoad("does-not-exist")
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 120, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Engine:   EngineConfig{BatchSize: 128, Bias: "high", CacheCapacity: 5000, StagnationLimit: 50, MaxIterations: 200},
		Storage:  StorageConfig{KeyPrefix: "custom:", SnapshotTTLHrs: 24},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Engine.BatchSize != 128 {
		t.Errorf("expected BatchSize=128, got %d", cfg.Engine.BatchSize)
	}
	if cfg.Engine.Bias != "high" {
		t.Errorf("expected Bias='high', got %q", cfg.Engine.Bias)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.SnapshotTTLHrs != 24 {
		t.Errorf("expected SnapshotTTLHrs=24, got %d", cfg.Storage.SnapshotTTLHrs)
	}
}
