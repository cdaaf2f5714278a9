package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"agenda/internal/live"
)

// ErrNotFound is returned by Update when no row has the task's id.
var ErrNotFound = errors.New("task not found")

// TaskRow is the persisted shape of a task.
type TaskRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Title        string `gorm:"not null"`
	Description  *string
	DueDateEpoch *int64 `gorm:"index"`
	Completed    bool   `gorm:"not null"`
	Category     *string
	Priority     int `gorm:"not null"`
}

// TableName returns the table name for TaskRow.
func (TaskRow) TableName() string {
	return "tasks"
}

type Options struct {
	// Debug logs every SQL statement through the gorm logger.
	Debug bool
}

type Store struct {
	db  *gorm.DB
	sql *sql.DB

	refreshMu sync.Mutex
	rows      *live.Value[[]TaskRow]
}

func Open(dbPath string, opts Options) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	logLevel := logger.Silent
	if opts.Debug {
		logLevel = logger.Info
	}
	// SQL logs follow the process log output; stdout belongs to the UI.
	gormLogger := logger.New(log.New(log.Writer(), "[storage] ", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&TaskRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Store{db: db, sql: sqlDB, rows: live.New[[]TaskRow](nil)}
	if err := s.refresh(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Printf("[storage] opened %s", dbPath)
	return s, nil
}

func (s *Store) Close() error {
	if s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

// ObserveAll streams the ordered task table: the current snapshot first,
// then one snapshot per change. The channel closes when ctx is done.
// Snapshots are shared between subscribers and must not be modified.
func (s *Store) ObserveAll(ctx context.Context) <-chan []TaskRow {
	return s.rows.Subscribe(ctx).C()
}

// Snapshot returns the latest published rows.
func (s *Store) Snapshot() []TaskRow {
	return s.rows.Get()
}

// GetByID looks up a single row. An unknown id yields ok == false and no error.
func (s *Store) GetByID(ctx context.Context, id int64) (TaskRow, bool, error) {
	var row TaskRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TaskRow{}, false, nil
	}
	if err != nil {
		return TaskRow{}, false, fmt.Errorf("failed to find task: %w", err)
	}
	return row, true, nil
}

// Insert stores row and returns its id. A row whose id already exists
// replaces the stored row instead of failing.
func (s *Store) Insert(ctx context.Context, row TaskRow) (int64, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	return row.ID, s.refresh(ctx)
}

// Update replaces every column of the row with the same id.
func (s *Store) Update(ctx context.Context, row TaskRow) error {
	if row.ID == 0 {
		return ErrNotFound
	}
	result := s.db.WithContext(ctx).
		Model(&TaskRow{ID: row.ID}).
		Select("*").
		Omit("id").
		Updates(&row)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return s.refresh(ctx)
}

// Delete removes the row with the same id. Deleting a missing row is a no-op.
func (s *Store) Delete(ctx context.Context, row TaskRow) error {
	result := s.db.WithContext(ctx).Delete(&TaskRow{}, row.ID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil
	}
	return s.refresh(ctx)
}

// refresh re-reads the ordered table and publishes it. Refreshes are
// serialized so a published snapshot is never older than the previous one.
func (s *Store) refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var rows []TaskRow
	err := s.db.WithContext(ctx).
		Order("due_date_epoch IS NULL").
		Order("due_date_epoch").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	s.rows.Set(rows)
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
