package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migrateTo ensures that the live db schema matches the target schema defined
// in schema.sql.
//
// It is a declarative schema migration that:
//
//  1. drops deleted tables,
//  2. creates new tables,
//  3. migrates changed tables using the 12-step schema migration from
//     https://www.sqlite.org/lang_altertable.html#otheralter,
//  4. synchronises indexes.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target database: %w", err)
	}
	defer detach()

	// Foreign key validation must be off for the duration of the migration.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign key validation: %w", err)
	}
	defer func() {
		if _, ferr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); ferr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to re-enable foreign keys",
				slog.Any("error", ferr))
		}
	}()

	var tx *sql.Tx
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	if err = db.migrateIndexes(ctx, tx); err != nil {
		return fmt.Errorf("migrate indexes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))

	return nil
}

// attachSchemaTarget attaches a temporary database initialised with the target
// schema so that live and target schemas can be diffed with SQL. The returned
// function detaches it and must be called after the migration.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	targetDataSourceName := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	targetDatabase, err := sql.Open("sqlite3", targetDataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open schema target database: %w", err)
	}
	defer func() {
		if cerr := targetDatabase.Close(); cerr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				slog.Any("error", cerr))
		}
	}()
	if _, err = targetDatabase.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("apply target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget",
		targetDataSourceName); err != nil {
		return nil, fmt.Errorf("attach schema target database: %w", err)
	}
	return func() {
		if _, derr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); derr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target database",
				slog.Any("error", derr))
		}
	}, nil
}

// rollback rolls back the given transaction, tolerating already-committed ones.
func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
			slog.Any("error", err))
	}
}

// migrateTables synchronises table schemas between the live and target databases.
func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	// Drop tables that no longer exist in the target schema.
	deletedTables, err := queryStrings(ctx, tx, `SELECT live.name
FROM sqlite_schema AS live
         LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = 'table'
  AND target.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query deleted tables: %w", err)
	}
	for _, table := range deletedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
			return fmt.Errorf("DROP TABLE %s: %w", table, err)
		}
	}

	// Create tables that only exist in the target schema.
	newTableSQLs, err := queryStrings(ctx, tx, `SELECT target.sql
FROM sqlite_schema AS live RIGHT JOIN schemaTarget.sqlite_schema AS target
ON live.name = target.name AND live.type = target.type
WHERE target.type = 'table'
  AND live.type IS NULL
  AND target.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query new tables: %w", err)
	}
	for _, newTableSQL := range newTableSQLs {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", newTableSQL))
		if _, err = tx.ExecContext(ctx, newTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Tables present in both but with changed SQL go through the full 12-step dance.
	changed, err := db.queryChangedTables(ctx, tx)
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	for _, table := range changed {
		if err = db.recreateTable(ctx, tx, table); err != nil {
			return fmt.Errorf("recreate table %s: %w", table.name, err)
		}
	}
	return nil
}

type changedTable struct {
	name   string
	newSQL string
}

func (db *Database) queryChangedTables(ctx context.Context, tx *sql.Tx) ([]changedTable, error) {
	// The table rename operation adds double quotes around the table name, so
	// quotes are stripped for this diff.
	rows, err := tx.QueryContext(ctx, `SELECT live.name, target.sql
FROM sqlite_schema AS live
         JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = 'table'
  AND live.name NOT LIKE 'sqlite_%'
  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer db.closeRows(ctx, rows)

	var result []changedTable
	for rows.Next() {
		var ct changedTable
		if err = rows.Scan(&ct.name, &ct.newSQL); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, ct)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// recreateTable migrates one changed table: create under a temporary name,
// copy the common columns, drop the old table, and rename.
func (db *Database) recreateTable(ctx context.Context, tx *sql.Tx, table changedTable) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.name), slog.String("new_sql", table.newSQL))

	tempName := table.name + "_migration_temp"
	tempSQL := strings.Replace(table.newSQL, table.name, tempName, 1)
	if _, err := tx.ExecContext(ctx, tempSQL); err != nil {
		return fmt.Errorf("create table under temporary name %s: %w", tempSQL, err)
	}

	// Column names are wrapped in double quotes to handle SQLite keywords.
	commonColumns, err := queryStrings(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table_name", table.name))
	if err != nil {
		return fmt.Errorf("query common columns: %w", err)
	}
	common := strings.Join(commonColumns, ", ")
	copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", //nolint:gosec // identifiers come from our own schema.
		tempName, common, common, table.name)
	if _, err = tx.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s;", table.name)); err != nil {
		return fmt.Errorf("drop old table: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", tempName, table.name)); err != nil {
		return fmt.Errorf("rename new table: %w", err)
	}
	return nil
}

// migrateIndexes drops indexes missing from the target schema and recreates
// new or changed ones.
func (db *Database) migrateIndexes(ctx context.Context, tx *sql.Tx) error {
	deleted, err := queryStrings(ctx, tx, `SELECT live.name
FROM sqlite_schema AS live
         LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = 'index'
  AND target.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query deleted indexes: %w", err)
	}
	for _, index := range deleted {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP INDEX %s", index)); err != nil {
			return fmt.Errorf("DROP INDEX %s: %w", index, err)
		}
	}

	type indexChange struct{ name, sql string }
	rows, err := tx.QueryContext(ctx, `SELECT target.name, target.sql
FROM sqlite_schema AS live RIGHT JOIN schemaTarget.sqlite_schema AS target
ON live.name = target.name AND live.type = target.type
WHERE target.type = 'index'
  AND target.sql IS NOT NULL
  AND (live.sql IS NULL OR live.sql <> target.sql)`)
	if err != nil {
		return fmt.Errorf("query new or changed indexes: %w", err)
	}
	defer db.closeRows(ctx, rows)

	var changes []indexChange
	for rows.Next() {
		var change indexChange
		if err = rows.Scan(&change.name, &change.sql); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		changes = append(changes, change)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	for _, change := range changes {
		// DROP INDEX IF EXISTS covers the changed-index case; new indexes are a no-op.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", change.name)); err != nil {
			return fmt.Errorf("drop changed index %s: %w", change.name, err)
		}
		if _, err = tx.ExecContext(ctx, change.sql); err != nil {
			return fmt.Errorf("create index %s: %w", change.name, err)
		}
	}
	return nil
}

func (db *Database) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "could not close rows", slog.Any("error", err))
	}
}

// queryStrings returns a single-column query result as a string slice.
func queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query.

	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}
