package main

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath != "data/reelquest.db" || cfg.ShardCount != 1 || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.CooldownLeaderboardMin != 30 || cfg.MaintenanceSchedule != "@every 6h" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "token")
	os.Unsetenv("SHARD_COUNT")
	if err := os.WriteFile(".env", []byte("SHARD_COUNT=4\nSHARD_ID=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SHARD_COUNT")
		os.Unsetenv("SHARD_ID")
	})

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ShardCount != 4 || cfg.ShardId != 3 {
		t.Fatalf("expected shard 3 of 4, got %d of %d", cfg.ShardId, cfg.ShardCount)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"DISCORD_TOKEN": ""}},
		{"shard out of range", map[string]string{"DISCORD_TOKEN": "t", "SHARD_COUNT": "2", "SHARD_ID": "2"}},
		{"inverted cooldown", map[string]string{"DISCORD_TOKEN": "t", "COOLDOWN_COMMAND_MIN": "5", "COOLDOWN_COMMAND_MAX": "1"}},
		{"bad number", map[string]string{"DISCORD_TOKEN": "t", "SHARD_COUNT": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
