package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"sbtalks/internal/core"
	"sbtalks/internal/master"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the masters in a SQLite database. A whole run's
// changes commit in one transaction, and the SQL itself enforces the
// upsert protocol: attendance keys insert-or-ignore, client_flag only
// ratchets upward, assigned_center only fills when empty.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (master.Snapshot, error) {
	snap := master.NewSnapshot()

	rows, err := s.db.QueryContext(ctx,
		`SELECT person_id, email, name, client_flag, zip, assigned_center FROM people_master`)
	if err != nil {
		return master.Snapshot{}, fmt.Errorf("%w: query people_master: %v", core.ErrPersistenceFailure, err)
	}
	defer rows.Close()
	for rows.Next() {
		var p core.Person
		var client int
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &client, &p.Zip, &p.AssignedCenter); err != nil {
			return master.Snapshot{}, fmt.Errorf("%w: scan people_master: %v", core.ErrPersistenceFailure, err)
		}
		p.Client = client != 0
		snap.People[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return master.Snapshot{}, fmt.Errorf("%w: iterate people_master: %v", core.ErrPersistenceFailure, err)
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT attendance_key, person_id, webinar_id, webinar_date, attended, source_fingerprint FROM attendance_master`)
	if err != nil {
		return master.Snapshot{}, fmt.Errorf("%w: query attendance_master: %v", core.ErrPersistenceFailure, err)
	}
	defer arows.Close()
	for arows.Next() {
		var a core.Attendance
		var attended int
		var date string
		if err := arows.Scan(&a.Key, &a.PersonID, &a.WebinarID, &date, &attended, &a.SourceFingerprint); err != nil {
			return master.Snapshot{}, fmt.Errorf("%w: scan attendance_master: %v", core.ErrPersistenceFailure, err)
		}
		a.Attended = attended != 0
		a.WebinarDate, err = core.ParseDate(date)
		if err != nil {
			return master.Snapshot{}, fmt.Errorf("%w: attendance_master key %s: bad date %q", core.ErrPersistenceFailure, a.Key, date)
		}
		snap.Attendance[a.Key] = a
	}
	if err := arows.Err(); err != nil {
		return master.Snapshot{}, fmt.Errorf("%w: iterate attendance_master: %v", core.ErrPersistenceFailure, err)
	}

	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap master.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	personStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO people_master (person_id, email, name, client_flag, zip, assigned_center)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(person_id) DO UPDATE SET
			client_flag = MAX(people_master.client_flag, excluded.client_flag),
			assigned_center = CASE
				WHEN people_master.assigned_center = '' THEN excluded.assigned_center
				ELSE people_master.assigned_center
			END`)
	if err != nil {
		return fmt.Errorf("%w: prepare people upsert: %v", core.ErrPersistenceFailure, err)
	}
	defer personStmt.Close()

	for _, p := range snap.PeopleSorted() {
		client := 0
		if p.Client {
			client = 1
		}
		if _, err := personStmt.ExecContext(ctx, p.ID, p.Email, p.Name, client, p.Zip, p.AssignedCenter); err != nil {
			return fmt.Errorf("%w: upsert person %s: %v", core.ErrPersistenceFailure, p.ID, err)
		}
	}

	attendanceStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO attendance_master
			(attendance_key, person_id, webinar_id, webinar_date, attended, source_fingerprint)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare attendance insert: %v", core.ErrPersistenceFailure, err)
	}
	defer attendanceStmt.Close()

	for _, a := range snap.AttendanceSorted() {
		attended := 0
		if a.Attended {
			attended = 1
		}
		if _, err := attendanceStmt.ExecContext(ctx, a.Key, a.PersonID, a.WebinarID, a.WebinarDate.String(), attended, a.SourceFingerprint); err != nil {
			return fmt.Errorf("%w: insert attendance %s: %v", core.ErrPersistenceFailure, a.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
