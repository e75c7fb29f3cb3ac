package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
grpc:
  endpoints:
    - name: fetch-mainnet
      url: grpc-fetchhub.fetch.ai:443
contracts:
  - address: fetch1contract
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.GRPC.DialTimeout != 10*time.Second {
		t.Errorf("Expected default dial timeout 10s, got %v", cfg.GRPC.DialTimeout)
	}
	if cfg.Store.Backend != StoreFile {
		t.Errorf("Expected default store backend file, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Path != "processed_events.json" {
		t.Errorf("Expected default store path, got %q", cfg.Store.Path)
	}
	if cfg.Contracts[0].PollInterval != 10*time.Second {
		t.Errorf("Expected default poll interval 10s, got %v", cfg.Contracts[0].PollInterval)
	}
	if cfg.Contracts[0].PageLimit != 100 {
		t.Errorf("Expected default page limit 100, got %d", cfg.Contracts[0].PageLimit)
	}
	if cfg.Contracts[0].Name != "fetch1contract" {
		t.Errorf("Expected contract name to default to address, got %q", cfg.Contracts[0].Name)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_GRPC_URL", "grpc-dorado.fetch.ai:443")

	path := writeConfig(t, `
grpc:
  endpoints:
    - name: dorado
      url: ${TEST_GRPC_URL}
contracts:
  - address: fetch1contract
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GRPC.Endpoints[0].URL != "grpc-dorado.fetch.ai:443" {
		t.Errorf("Expected env expansion, got %q", cfg.GRPC.Endpoints[0].URL)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"no endpoints",
			"contracts:\n  - address: fetch1contract\n",
		},
		{
			"no contracts",
			"grpc:\n  endpoints:\n    - name: a\n      url: host:443\n",
		},
		{
			"unknown action",
			`
grpc:
  endpoints:
    - name: a
      url: host:443
contracts:
  - address: fetch1contract
    actions: [stake]
`,
		},
		{
			"unknown store backend",
			`
grpc:
  endpoints:
    - name: a
      url: host:443
contracts:
  - address: fetch1contract
store:
  backend: etcd
`,
		},
		{
			"redis store without url",
			`
grpc:
  endpoints:
    - name: a
      url: host:443
contracts:
  - address: fetch1contract
store:
  backend: redis
`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, c.content)
			if _, err := Load(path); err == nil {
				t.Errorf("Expected validation error for %s", c.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
