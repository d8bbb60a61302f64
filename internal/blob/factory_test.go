package blob

import (
	"context"
	"testing"

	"simcore/internal/blob/core"
)

func TestOpenFromEnvDriverSelection(t *testing.T) {
	ctx := context.Background()

	t.Setenv("SIMCORE_BLOB_DRIVER", "memory")
	store, err := OpenFromEnv(ctx)
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}

	t.Setenv("SIMCORE_BLOB_DRIVER", "fs")
	t.Setenv("SIMCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = OpenFromEnv(ctx)
	if err != nil {
		t.Fatalf("fs driver: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}

	t.Setenv("SIMCORE_BLOB_DRIVER", "s3")
	t.Setenv("SIMCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(ctx); err == nil {
		t.Fatalf("s3 without bucket accepted")
	}

	t.Setenv("SIMCORE_BLOB_DRIVER", "bogus")
	if _, err := OpenFromEnv(ctx); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}
