package pg

import (
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration. When fsys is nil dir is
// read from disk, otherwise dir is resolved inside fsys.
func Migrate(cfg Config, fsys fs.FS, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}
	goose.SetBaseFS(fsys)

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer db.Close()

	if err = goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	version, err := goose.GetDBVersion(db)
	if err == nil {
		logger.Info("[pg] migrations applied", "version", version)
	}
	return nil
}
