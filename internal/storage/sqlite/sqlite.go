// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is fast enough for most projects and trivial to set up.
//
// TWO DRIVERS:
// ────────────
// Both blank imports below register a driver with database/sql:
//
//	"sqlite3" — github.com/mattn/go-sqlite3, the C library via cgo
//	"sqlite"  — modernc.org/sqlite, the same engine translated to Go
//
// config.StorageDriver picks one of them. The pure-Go driver is handy on
// machines (and CI runners) without a C toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/records-api/internal/config"
	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// schema is idempotent — safe to run on every startup.
//
// Every data rule for a student lives here and nowhere else:
//
//	surname, name, age, average_mark — NOT NULL
//	surname, name                    — not empty
//	average_mark                     — CHECK 1.00 ..= 5.00
//	patronymic                       — nullable
//
// A JSON body that omits surname decodes to "" rather than nil, so the
// emptiness checks are what actually reject a missing name.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		surname      TEXT    NOT NULL CHECK (surname <> ''),
		name         TEXT    NOT NULL CHECK (name <> ''),
		patronymic   TEXT,
		age          INTEGER NOT NULL,
		average_mark REAL    NOT NULL
			CHECK (average_mark >= 1.00 AND average_mark <= 5.00)
	)
`

const (
	selectColumns = "SELECT id, surname, name, patronymic, age, average_mark FROM students"

	insertStudent = "INSERT INTO students (surname, name, patronymic, age, average_mark) VALUES (?, ?, ?, ?, ?)"
	updateStudent = "UPDATE students SET surname = ?, name = ?, patronymic = ?, age = ?, average_mark = ? WHERE id = ?"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// compile-time check that *SQLite satisfies the interface
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath with the driver named
// by cfg.StorageDriver, creates the students table if it does not
// already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	driver := cfg.StorageDriver
	if driver == "" {
		driver = "sqlite3"
	}

	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open(driver, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanStudent reads one row in selectColumns order.
// patronymic is nullable, so it goes through sql.NullString first.
func scanStudent(row scanner) (types.Student, error) {
	var (
		student    types.Student
		patronymic sql.NullString
	)

	if err := row.Scan(
		&student.ID,
		&student.Surname,
		&student.Name,
		&patronymic,
		&student.Age,
		&student.AverageMark,
	); err != nil {
		return types.Student{}, err
	}

	if patronymic.Valid {
		student.Patronymic = &patronymic.String
	}

	return student, nil
}

// nullable turns a nil *string into SQL NULL.
func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll returns all student rows ordered by primary key.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindAll(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, selectColumns+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("FindAll: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("FindAll: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindAll: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByID fetches exactly one student row matched by primary key.
//
// sql.ErrNoRows is translated to (zero, false, nil): a miss is a normal
// answer for a lookup, and deciding whether it is an error belongs to
// the caller.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindByID(ctx context.Context, id int64) (types.Student, bool, error) {
	row := s.Db.QueryRowContext(ctx, selectColumns+" WHERE id = ? LIMIT 1", id)

	student, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, false, nil
	}
	if err != nil {
		return types.Student{}, false, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, true, nil
}

// ExistsByID reports whether a row with the given key exists.
func (s *SQLite) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool

	err := s.Db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByID: scan: %w", err)
	}

	return exists, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, so save works inside
// and outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// save inserts the student when ID is zero and updates it otherwise.
func save(ctx context.Context, db execer, student types.Student) (types.Student, error) {
	if student.ID == 0 {
		result, err := db.ExecContext(ctx, insertStudent,
			student.Surname,
			student.Name,
			nullable(student.Patronymic),
			student.Age,
			student.AverageMark,
		)
		if err != nil {
			return types.Student{}, fmt.Errorf("insert: %w", err)
		}

		// LastInsertId returns the auto-generated primary key of the new row.
		id, err := result.LastInsertId()
		if err != nil {
			return types.Student{}, fmt.Errorf("last insert id: %w", err)
		}

		student.ID = id
		return student, nil
	}

	// argument order matches the ? order in the SQL:
	//   surname, name, patronymic, age, average_mark, id
	result, err := db.ExecContext(ctx, updateStudent,
		student.Surname,
		student.Name,
		nullable(student.Patronymic),
		student.Age,
		student.AverageMark,
		student.ID,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{}, fmt.Errorf("update id %d: %w", student.ID, storage.ErrNotFound)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save inserts or updates a single student.
//
// Placeholders (?) keep user input out of the SQL text: the driver sends
// the query and the values separately, so a surname like
// "'; DROP TABLE students; --" is stored as plain data.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Save(ctx context.Context, student types.Student) (types.Student, error) {
	saved, err := save(ctx, s.Db, student)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: %w", err)
	}

	return saved, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SaveAll saves every student inside one transaction.
//
// If any row violates a constraint the whole batch is rolled back, so a
// client never ends up with half of its students stored.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) SaveAll(ctx context.Context, students []types.Student) ([]types.Student, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("SaveAll: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning ErrTxDone.
	defer tx.Rollback()

	saved := make([]types.Student, 0, len(students))
	for i, student := range students {
		out, err := save(ctx, tx, student)
		if err != nil {
			return nil, fmt.Errorf("SaveAll: record %d: %w", i, err)
		}

		saved = append(saved, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("SaveAll: commit: %w", err)
	}

	return saved, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteByID removes a student row by primary key.
// Deleting an id that does not exist affects zero rows and is not an error.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		return fmt.Errorf("DeleteByID: exec: %w", err)
	}

	return nil
}
