package workflow_test

import (
	"context"
	"errors"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"tapegen/internal/appsheet"
	"tapegen/internal/logging"
	"tapegen/internal/services"
	"tapegen/internal/testsupport"
	"tapegen/internal/workflow"
)

func seededStore(t *testing.T) *testsupport.FakeStore {
	t.Helper()
	store := testsupport.NewFakeStore(t)
	store.SeedComponentCodes(map[string]string{"Resistor": "R1", "Capacitor": "C1"})
	store.Seed("Suppliers", appsheet.Row{"Row ID": "xyz", "Name": "Acme"})
	return store
}

func inventory(t *testing.T, dir string) string {
	t.Helper()
	return testsupport.WriteCSV(t, dir, "inventory.csv",
		"Category,Code,Value,Unit,Qty,Supplier,Note",
		",,,,int,ref:Suppliers:Name,none",
		"Resistor,ABC,100,Ohm,5,Acme,fragile",
		"Capacitor,X7R,10,nF,2.0,Acme,",
	)
}

func decodePNG(t *testing.T, path string) image.Config {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png, got %s", format)
	}
	return cfg
}

func TestRunRendersAndPosts(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store), testsupport.WithLabelFormat(":Value::Unit:"))
	dir := testsupport.BaseDir(cfg)
	output := filepath.Join(dir, "out", "tape.png")

	runner := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithRunID("run-1"))
	summary, err := runner.Run(context.Background(), workflow.Request{
		InputPath:  inventory(t, dir),
		OutputPath: output,
		Post:       true,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.RunID != "run-1" {
		t.Fatalf("unexpected run id %q", summary.RunID)
	}
	if len(summary.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(summary.Records))
	}
	if got := summary.Records[0].BarCode(); got != "$R1$ABC" {
		t.Fatalf("unexpected barcode %q", got)
	}
	if got := summary.Records[1].BarCode(); got != "$C1$X7R" {
		t.Fatalf("unexpected barcode %q", got)
	}

	img := decodePNG(t, output)
	if img.Height != cfg.Tape.Height {
		t.Fatalf("expected height %d, got %d", cfg.Tape.Height, img.Height)
	}
	if img.Width != summary.Width || summary.Height != cfg.Tape.Height {
		t.Fatalf("summary size %dx%d does not match image %dx%d", summary.Width, summary.Height, img.Width, img.Height)
	}
	if summary.Font == "" {
		t.Fatal("expected font description")
	}

	if summary.Sync == nil || summary.Sync.Inserted != 2 {
		t.Fatalf("expected two inserted rows, got %+v", summary.Sync)
	}
	adds := store.Adds()
	if len(adds) != 1 || adds[0].Table != "Items" {
		t.Fatalf("expected one insert into Items, got %+v", adds)
	}
	first := adds[0].Rows[0]
	if !first.Equals("Supplier", "xyz") || !first.Equals("Qty", "5") {
		t.Fatalf("hints not applied: %v", first)
	}
	if _, ok := first["Note"]; ok {
		t.Fatalf("dropped column posted: %v", first)
	}
	if !adds[0].Rows[1].Equals("Qty", "2") {
		t.Fatalf("expected truncated qty, got %v", adds[0].Rows[1])
	}
	if store.Finds("ComponentCodes") != 1 || store.Finds("Suppliers") != 1 {
		t.Fatalf("expected one fetch per table, got codes=%d suppliers=%d", store.Finds("ComponentCodes"), store.Finds("Suppliers"))
	}

	again, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath: filepath.Join(dir, "inventory.csv"),
		Post:      true,
	})
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if again.Sync == nil || again.Sync.Inserted != 0 || again.Sync.Skipped != 2 {
		t.Fatalf("expected idempotent re-sync, got %+v", again.Sync)
	}
	if len(store.Adds()) != 1 {
		t.Fatalf("expected no further inserts, got %d", len(store.Adds()))
	}
	if again.OutputPath != "" {
		t.Fatalf("expected no output without a path, got %q", again.OutputPath)
	}
}

func TestRunHintsOnlyAtSync(t *testing.T) {
	store := testsupport.NewFakeStore(t)
	store.SeedComponentCodes(map[string]string{"Resistor": "R1", "Capacitor": "C1"})
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store))
	dir := testsupport.BaseDir(cfg)

	// Suppliers is empty, which only matters when posting.
	summary, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath:  inventory(t, dir),
		OutputPath: filepath.Join(dir, "tape.png"),
	})
	if err != nil {
		t.Fatalf("render-only run failed: %v", err)
	}
	if summary.Sync != nil {
		t.Fatal("expected no sync without post")
	}
	if value, _ := summary.Records[0].Get("Supplier"); value != "Acme" {
		t.Fatalf("record mutated by hints: %q", value)
	}

	_, err = workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath: filepath.Join(dir, "inventory.csv"),
		Post:      true,
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected unresolved reference, got %v", err)
	}
	if len(store.Adds()) != 0 {
		t.Fatal("expected no insert")
	}
}

func TestRunZeroRecordsWritesNothing(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store))
	dir := testsupport.BaseDir(cfg)
	input := testsupport.WriteCSV(t, dir, "empty.csv", "Category,Code", ",")
	output := filepath.Join(dir, "tape.png")

	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath:  input,
		OutputPath: output,
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat err %v", statErr)
	}
}

func TestRunAbortsOnInvalidRow(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store))
	dir := testsupport.BaseDir(cfg)
	input := testsupport.WriteCSV(t, dir, "bad.csv",
		"Category,Code,Value",
		",,",
		"Resistor,ABC,1",
		"Resistor,,2",
	)
	output := filepath.Join(dir, "tape.png")

	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath:  input,
		OutputPath: output,
		Post:       true,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatal("expected no partial output")
	}
	if len(store.Adds()) != 0 {
		t.Fatal("expected no insert")
	}
}

func TestRunUnmappedCategory(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store))
	dir := testsupport.BaseDir(cfg)
	input := testsupport.WriteCSV(t, dir, "inv.csv", "Category,Code", ",", "Inductor,L1")

	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{InputPath: input})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunMalformedDirective(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store))
	dir := testsupport.BaseDir(cfg)
	input := testsupport.WriteCSV(t, dir, "inv.csv", "Category,Code,Supplier", ",,ref:Suppliers", "Resistor,A,Acme")

	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{InputPath: input})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Finds("ComponentCodes") != 0 {
		t.Fatal("expected the run to stop before any remote read")
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	input := testsupport.WriteCSV(t, dir, "inv.csv", "Category,Code", ",", "Resistor,A")

	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{InputPath: input})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunOnlyLabel(t *testing.T) {
	store := seededStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStore(store), testsupport.WithLabelFormat(""))
	cfg.Tape.OnlyLabel = true
	dir := testsupport.BaseDir(cfg)

	// Neither symbols nor captions leave nothing to lay out.
	_, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath:  inventory(t, dir),
		OutputPath: filepath.Join(dir, "tape.png"),
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.Label.Format = "auto"
	summary, err := workflow.NewRunner(cfg, logging.NewNop()).Run(context.Background(), workflow.Request{
		InputPath:  filepath.Join(dir, "inventory.csv"),
		OutputPath: filepath.Join(dir, "tape.png"),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Width == 0 || summary.Height != cfg.Tape.Height {
		t.Fatalf("unexpected size %dx%d", summary.Width, summary.Height)
	}
}
