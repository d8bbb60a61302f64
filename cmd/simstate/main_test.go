package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "out-*")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func readBack(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return string(data)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("SIMCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("SIMCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	snapshot := filepath.Join(t.TempDir(), "world.json")

	if code := run([]string{"-seed", "save", snapshot}, tempFile(t), tempFile(t)); code != 0 {
		t.Fatalf("save exit code %d", code)
	}
	if code := run([]string{"load", snapshot}, tempFile(t), tempFile(t)); code != 0 {
		t.Fatalf("load exit code %d", code)
	}

	stdout := tempFile(t)
	if code := run([]string{"dump"}, stdout, tempFile(t)); code != 0 {
		t.Fatalf("dump exit code %d", code)
	}
	out := readBack(t, stdout)
	if !strings.Contains(out, "issue_types") {
		t.Fatalf("dump missing seeded data:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	t.Setenv("SIMCORE_STORAGE_DRIVER", "memory")
	if code := run(nil, tempFile(t), tempFile(t)); code != 2 {
		t.Fatalf("no args exit code %d", code)
	}
	if code := run([]string{"save"}, tempFile(t), tempFile(t)); code != 2 {
		t.Fatalf("save without path exit code %d", code)
	}
	if code := run([]string{"explode"}, tempFile(t), tempFile(t)); code != 2 {
		t.Fatalf("unknown command exit code %d", code)
	}
}

func TestLoadMissingSnapshotFails(t *testing.T) {
	t.Setenv("SIMCORE_STORAGE_DRIVER", "memory")
	if code := run([]string{"load", filepath.Join(t.TempDir(), "absent.json")}, tempFile(t), tempFile(t)); code != 1 {
		t.Fatalf("missing snapshot exit code %d", code)
	}
}
