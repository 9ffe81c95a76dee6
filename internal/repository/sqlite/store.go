// Package sqlite provides a SQLite-backed record store for single node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    username        TEXT NOT NULL UNIQUE,
    email           TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash   TEXT NOT NULL,
    country         TEXT NOT NULL DEFAULT '',
    institute       TEXT NOT NULL DEFAULT '',
    course          TEXT NOT NULL DEFAULT '',
    role            TEXT NOT NULL DEFAULT 'MEMBER',
    points          INTEGER NOT NULL DEFAULT 0,
    problems_solved INTEGER NOT NULL DEFAULT 0,
    tier            TEXT NOT NULL,
    solved_problems TEXT NOT NULL DEFAULT '[]',
    version         INTEGER NOT NULL DEFAULT 1,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS users_points_idx ON users (points DESC);
CREATE TABLE IF NOT EXISTS problems (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    difficulty  TEXT NOT NULL,
    category    TEXT NOT NULL,
    sort_order  INTEGER NOT NULL,
    description TEXT NOT NULL,
    examples    TEXT NOT NULL DEFAULT '[]',
    constraints TEXT NOT NULL DEFAULT '[]',
    points      INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);`

const userColumns = `id, username, email, password_hash, country, institute, course, role,
       points, problems_solved, tier, solved_problems, version, created_at, updated_at`

const problemColumns = `id, title, difficulty, category, sort_order, description, examples, constraints, points, created_at`

// Store persists users and problems in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time; SQLite serializes writes anyway
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return errors.New("sqlite store not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

// Problems exposes the store as a ProblemRepository.
func (s *Store) Problems() repository.ProblemRepository { return problemStore{s} }

type userStore struct{ s *Store }

func (u userStore) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.SolvedProblems == nil {
		user.SolvedProblems = []string{}
	}
	solved, err := json.Marshal(user.SolvedProblems)
	if err != nil {
		return fmt.Errorf("encode solved problems: %w", err)
	}
	now := time.Now().UTC()
	_, err = u.s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, country, institute, course, role,
		   points, problems_solved, tier, solved_problems, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Country,
		user.Institute,
		user.Course,
		string(user.Role),
		user.Points,
		user.ProblemsSolved,
		string(user.Tier),
		string(solved),
		toMillis(now),
		toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.Version = 1
	user.CreatedAt = fromMillis(toMillis(now))
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (u userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := u.s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (u userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (u userStore) Save(ctx context.Context, user *domain.User) error {
	solved, err := json.Marshal(user.SolvedProblems)
	if err != nil {
		return fmt.Errorf("encode solved problems: %w", err)
	}
	now := time.Now().UTC()
	res, err := u.s.sqlDB.ExecContext(ctx,
		`UPDATE users SET points = ?, problems_solved = ?, tier = ?, solved_problems = ?,
		   version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		user.Points,
		user.ProblemsSolved,
		string(user.Tier),
		string(solved),
		toMillis(now),
		user.ID,
		user.Version,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if affected == 0 {
		if _, getErr := u.GetByID(ctx, user.ID); errors.Is(getErr, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	user.Version++
	user.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

func (u userStore) ListByPoints(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := u.s.sqlDB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY points DESC, created_at ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

type problemStore struct{ s *Store }

func (p problemStore) Create(ctx context.Context, problem *domain.Problem) error {
	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}
	examples, err := json.Marshal(nonNil(problem.Examples))
	if err != nil {
		return fmt.Errorf("encode examples: %w", err)
	}
	constraints, err := json.Marshal(nonNil(problem.Constraints))
	if err != nil {
		return fmt.Errorf("encode constraints: %w", err)
	}
	now := time.Now().UTC()
	_, err = p.s.sqlDB.ExecContext(ctx,
		`INSERT INTO problems (`+problemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		problem.ID,
		problem.Title,
		string(problem.Difficulty),
		problem.Category,
		problem.Order,
		problem.Description,
		string(examples),
		string(constraints),
		problem.Points,
		toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("create problem: %w", err)
	}
	problem.CreatedAt = fromMillis(toMillis(now))
	return nil
}

func (p problemStore) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	row := p.s.sqlDB.QueryRowContext(ctx, `SELECT `+problemColumns+` FROM problems WHERE id = ?`, id)
	return scanProblem(row)
}

func (p problemStore) List(ctx context.Context) ([]domain.Problem, error) {
	rows, err := p.s.sqlDB.QueryContext(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var result []domain.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *problem)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user             domain.User
		role, tier       string
		solved           string
		created, updated int64
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Country,
		&user.Institute,
		&user.Course,
		&role,
		&user.Points,
		&user.ProblemsSolved,
		&tier,
		&solved,
		&user.Version,
		&created,
		&updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if err := json.Unmarshal([]byte(solved), &user.SolvedProblems); err != nil {
		return nil, fmt.Errorf("decode solved problems: %w", err)
	}
	user.Role = domain.UserRole(role)
	user.Tier = domain.Tier(tier)
	user.CreatedAt = fromMillis(created)
	user.UpdatedAt = fromMillis(updated)
	return &user, nil
}

func scanProblem(row rowScanner) (*domain.Problem, error) {
	var (
		problem               domain.Problem
		difficulty            string
		examples, constraints string
		created               int64
	)
	if err := row.Scan(
		&problem.ID,
		&problem.Title,
		&difficulty,
		&problem.Category,
		&problem.Order,
		&problem.Description,
		&examples,
		&constraints,
		&problem.Points,
		&created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan problem: %w", err)
	}
	if err := json.Unmarshal([]byte(examples), &problem.Examples); err != nil {
		return nil, fmt.Errorf("decode examples: %w", err)
	}
	if err := json.Unmarshal([]byte(constraints), &problem.Constraints); err != nil {
		return nil, fmt.Errorf("decode constraints: %w", err)
	}
	problem.Difficulty = domain.Difficulty(difficulty)
	problem.CreatedAt = fromMillis(created)
	return &problem, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var (
	_ repository.UserRepository    = userStore{}
	_ repository.ProblemRepository = problemStore{}
)
