package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteCSV writes comma separated lines (header, hint row, data rows) into dir.
func WriteCSV(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), strings.Join(lines, "\n")+"\n")
}

// WriteCredentials writes an AppSheet key file into dir.
func WriteCredentials(t testing.TB, dir, appID, appKey string) string {
	t.Helper()

	data, err := json.Marshal(map[string]string{
		"ApplicationId":  appID,
		"ApplicationKey": appKey,
	})
	if err != nil {
		t.Fatalf("encode credentials: %v", err)
	}
	return WriteFile(t, filepath.Join(dir, "appsheet.json"), string(data))
}
