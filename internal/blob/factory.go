// Package blob selects and constructs the attachment storage backend.
package blob

import (
	"context"
	"fmt"
	"os"

	"simcore/internal/blob/core"
	fsblob "simcore/internal/infra/blob/fs"
	memblob "simcore/internal/infra/blob/memory"
	s3blob "simcore/internal/infra/blob/s3"
)

// OpenFromEnv constructs an attachment store using environment variables.
// Defaults to the filesystem driver when unset.
//
//	SIMCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	SIMCORE_BLOB_FS_ROOT: root dir for the fs driver (default ./attachments)
//	SIMCORE_BLOB_S3_*: see the s3 package
func OpenFromEnv(ctx context.Context) (core.Store, error) {
	driver := os.Getenv("SIMCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(core.DriverFilesystem)
	}
	switch core.Driver(driver) {
	case core.DriverFilesystem:
		return fsblob.New(os.Getenv("SIMCORE_BLOB_FS_ROOT"))
	case core.DriverS3:
		return s3blob.OpenFromEnv(ctx)
	case core.DriverMemory:
		return memblob.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
