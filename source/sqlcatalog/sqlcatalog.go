// Package sqlcatalog is the reference SQL/SQLite catalog Data Interface
// backend: a query parameterised by the poll's filetime window against a
// table of (path, type, collector, project, filetime, runtime) rows, with
// the filter set's CoarseMatch applied to each row returned.
//
// Only the sqlite3 driver is wired (db-file option); the networked SQL
// options (db-name/user/password/host/port/socket) from spec.md §6 are
// accepted by Configure but rejected at Start with ErrBackendStart — see
// DESIGN.md for why no networked driver from the example pack could be
// wired without inventing a dependency the corpus never reaches for.
package sqlcatalog

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/source"
)

func init() {
	source.Register("sql", func() source.Backend { return New() })
}

const defaultTable = "archive"

// Backend queries a sqlite database for catalog rows.
type Backend struct {
	dbFile    string
	table     string
	networked bool // any of db-name/user/password/host/port/socket was set

	db *sql.DB
}

func New() *Backend {
	return &Backend{table: defaultTable}
}

func (b *Backend) Configure(option, value string) error {
	switch option {
	case "db-file":
		b.dbFile = value
	case "table":
		b.table = value
	case "db-name", "user", "password", "host", "port", "socket":
		b.networked = true
	default:
		return source.ErrUnknownOption
	}
	return nil
}

func (b *Backend) Start(ctx context.Context) error {
	if b.networked {
		return errors.Wrap(source.ErrBackendStart, "sqlcatalog: networked SQL catalogs are not implemented, use db-file")
	}
	if b.dbFile == "" {
		return source.ErrBackendStart
	}

	db, err := sql.Open("sqlite3", b.dbFile)
	if err != nil {
		return errors.Wrapf(err, "sqlcatalog: open %s", b.dbFile)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrapf(err, "sqlcatalog: ping %s", b.dbFile)
	}

	b.db = db
	return nil
}

func (b *Backend) Poll(ctx context.Context, fs *filterset.Set, from, to uint32) ([]descriptor.Descriptor, source.Status, error) {
	if b.db == nil {
		return nil, source.Error, source.ErrBackendQuery
	}

	query := `SELECT path, type, collector, project, filetime, runtime FROM ` + b.table +
		` WHERE filetime >= ? AND filetime <= ? ORDER BY filetime ASC`

	rows, err := b.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, source.Error, errors.Wrap(err, "sqlcatalog: query")
	}
	defer rows.Close()

	var out []descriptor.Descriptor
	for rows.Next() {
		var (
			path, kind, collector, project string
			filetime, runtime              uint32
		)
		if err := rows.Scan(&path, &kind, &collector, &project, &filetime, &runtime); err != nil {
			return nil, source.Error, errors.Wrap(err, "sqlcatalog: scan")
		}

		dtype := descriptor.Updates
		if kind == "ribs" || kind == "rib" {
			dtype = descriptor.RIB
		}

		d := descriptor.Descriptor{
			Path: path, Type: dtype, Collector: collector, Project: project,
			FileTime: filetime, ScanTime: runtime,
		}
		if fs == nil || fs.CoarseMatch(d) {
			out = append(out, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, source.Error, errors.Wrap(err, "sqlcatalog: rows")
	}

	if len(out) == 0 {
		return nil, source.Empty, nil
	}
	return out, source.OK, nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
