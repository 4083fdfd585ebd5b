package folio

import (
	"io/fs"

	"github.com/goliatone/go-folio/internal/storage"
)

// MigrationsFS returns the embedded SQL migrations for hosts that run their
// own migrator.
func MigrationsFS() fs.FS {
	return storage.MigrationsFS()
}
