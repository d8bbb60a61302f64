package core

import (
	"fmt"
	"os"

	"simcore/internal/infra/persistence/memory"
	"simcore/internal/infra/persistence/postgres"
	"simcore/internal/infra/persistence/sqlite"
	"simcore/pkg/domain"
)

// StorageDriver identifies a concrete storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenStore selects a storage backend using environment variables.
// Defaults to sqlite when unset.
//
//	SIMCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SIMCORE_SQLITE_PATH: path to sqlite file (default ./simcore.db)
//	SIMCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStore() (domain.Store, error) {
	driver := os.Getenv("SIMCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("SIMCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("SIMCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
