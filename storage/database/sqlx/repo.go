package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"

	"github.com/trezcool/shule/core"
)

// DB is a sqlx database, either PostgreSQL or SQLite.
// Queries are written with `?` placeholders and rebound for the driver.
type DB struct {
	*sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// isPostgres tells whether row locks (`SELECT ... FOR UPDATE`) are available.
func (db *DB) isPostgres() bool {
	return db.DriverName() == "postgres"
}

// inTx runs fn in a transaction, committed when fn succeeds and rolled back otherwise.
func (db *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// trapNoRowsErr maps sql "no rows" err to `notFoundErr`
func trapNoRowsErr(err error, notFoundErr error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// checkAffected returns `notFoundErr` when no row was affected by `res`.
func checkAffected(res sql.Result, notFoundErr error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

// isUniqueViolation tells whether err was raised by a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505" // unique_violation
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// lowerFunc returns the SQL function folding case before a LIKE, along with its Go counterpart.
// On SQLite it is CASEFOLD, registered by the storage/database driver.
func (db *DB) lowerFunc() (string, func(string) string) {
	if db.isPostgres() {
		return "LOWER", strings.ToLower
	}
	return "CASEFOLD", cases.Fold().String
}

// containsPattern returns a LIKE pattern matching `s` anywhere, to use with `ESCAPE '\'`.
func containsPattern(s string, fold func(string) string) string {
	return "%" + likeEscaper.Replace(fold(s)) + "%"
}

// orderBy builds an ORDER BY clause out of `orderings`, `columns` maps ordering fields to column names.
// Unknown fields are skipped, results are ordered by id when none are left.
func orderBy(orderings []core.DBOrdering, columns map[string]string) string {
	clauses := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return " ORDER BY id ASC"
	}
	return " ORDER BY " + strings.Join(clauses, ", ") + ", id ASC"
}
