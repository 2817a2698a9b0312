package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"costmanager/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists users, costs and tallied monthly totals.
// Cost dates are stored as unix milliseconds and birthdays as YYYY-MM-DD
// text, keeping range comparisons exact and independent of the driver's
// time encoding.
type SQLiteRepository struct {
	db *sql.DB
}

const birthdayLayout = "2006-01-02"

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a user with its caller-assigned id. A colliding id
// yields core.ErrDuplicateID.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, birthday, marital_status)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Birthday.UTC().Format(birthdayLayout), string(u.MaritalStatus),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.User{}, core.ErrDuplicateID
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite",
		"id", u.ID,
		"first_name", u.FirstName,
		"last_name", u.LastName)

	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u        core.User
		birthday string
		marital  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, birthday, marital_status
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &birthday, &marital)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("query user by id: %w", err)
	}
	u.Birthday, err = time.Parse(birthdayLayout, birthday)
	if err != nil {
		return core.User{}, fmt.Errorf("parse stored birthday %q: %w", birthday, err)
	}
	u.MaritalStatus = core.MaritalStatus(marital)
	return u, nil
}

// CreateCost inserts a cost and returns it with its storage-assigned id.
func (r *SQLiteRepository) CreateCost(ctx context.Context, c core.Cost) (core.Cost, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO costs (user_id, description, category, sum, date)
		 VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Description, string(c.Category), c.Sum, c.Date.UTC().UnixMilli(),
	)
	if err != nil {
		return core.Cost{}, fmt.Errorf("insert cost: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.Cost{}, fmt.Errorf("get last insert id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Cost saved to SQLite",
		"id", c.ID,
		"user_id", c.UserID,
		"category", string(c.Category),
		"sum", c.Sum)

	return c, nil
}

func (r *SQLiteRepository) GetCost(ctx context.Context, id int64) (core.Cost, error) {
	c, err := scanCost(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, category, sum, date
		 FROM costs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Cost{}, core.ErrNotFound
		}
		return core.Cost{}, fmt.Errorf("query cost by id: %w", err)
	}
	return c, nil
}

// ListCostsByUser returns every cost owned by the user in insertion order.
func (r *SQLiteRepository) ListCostsByUser(ctx context.Context, userID int64) ([]core.Cost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, category, sum, date
		 FROM costs WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query costs by user: %w", err)
	}
	defer rows.Close()
	return collectCosts(rows)
}

// ListCostsByUserAndRange returns the user's costs dated within [start, end],
// inclusive on both ends.
func (r *SQLiteRepository) ListCostsByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Cost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, category, sum, date
		 FROM costs WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY id`,
		userID, start.UTC().UnixMilli(), end.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query costs by user and range: %w", err)
	}
	defer rows.Close()
	return collectCosts(rows)
}

// ListPendingTally returns up to limit costs that have not been folded into
// monthly_totals yet, oldest first.
func (r *SQLiteRepository) ListPendingTally(ctx context.Context, limit int) ([]core.Cost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, description, category, sum, date
		 FROM costs WHERE tallied = 0 ORDER BY id LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("query pending tally costs: %w", err)
	}
	defer rows.Close()
	return collectCosts(rows)
}

func (r *SQLiteRepository) MarkTallied(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE costs SET tallied = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark cost tallied: %w", err)
	}
	return nil
}

// AddToMonthlyTotal folds amount into the running total for the given
// (user, year, month, category) cell, creating the row on first use.
func (r *SQLiteRepository) AddToMonthlyTotal(ctx context.Context, userID int64, year, month int, category string, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_totals (user_id, year, month, category, total, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id, year, month, category)
		 DO UPDATE SET total = total + excluded.total, updated_at = CURRENT_TIMESTAMP`,
		userID, year, month, category, amount)
	if err != nil {
		return fmt.Errorf("upsert monthly total: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetMonthlyTotal(ctx context.Context, userID int64, year, month int, category string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT total FROM monthly_totals
		 WHERE user_id = ? AND year = ? AND month = ? AND category = ?`,
		userID, year, month, category,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("query monthly total: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCost(row rowScanner) (core.Cost, error) {
	var (
		c        core.Cost
		category string
		dateMs   int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Description, &category, &c.Sum, &dateMs); err != nil {
		return core.Cost{}, err
	}
	c.Category = core.Category(category)
	c.Date = time.UnixMilli(dateMs).UTC()
	return c, nil
}

func collectCosts(rows *sql.Rows) ([]core.Cost, error) {
	var costs []core.Cost
	for rows.Next() {
		c, err := scanCost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		costs = append(costs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost rows: %w", err)
	}
	return costs, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
