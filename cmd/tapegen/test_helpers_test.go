package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tapegen/internal/appsheet"
	"tapegen/internal/config"
	"tapegen/internal/testsupport"
)

type cliTestEnv struct {
	store      *testsupport.FakeStore
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TAPEGEN_APPSHEET_CREDENTIALS", "")
	t.Setenv("TAPEGEN_APPSHEET_URL", "")

	store := testsupport.NewFakeStore(t)
	store.SeedComponentCodes(map[string]string{"Resistor": "R1", "Capacitor": "C1"})
	store.Seed("Suppliers", appsheet.Row{"Row ID": "xyz", "Name": "Acme"})

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStore(store)}, opts...)...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "tapegen.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{store: store, cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) inventory(t *testing.T) string {
	t.Helper()
	return testsupport.WriteCSV(t, e.baseDir, "inventory.csv",
		"Category,Code,Value,Unit,Qty,Supplier,Note",
		",,,,int,ref:Suppliers:Name,none",
		"Resistor,ABC,100,Ohm,5,Acme,fragile",
		"Capacitor,X7R,10,nF,2,Acme,",
	)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, encoded)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
