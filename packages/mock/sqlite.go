package mock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/mattn/go-sqlite3"
)

const usuariosTable = `CREATE TABLE IF NOT EXISTS usuarios (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	nome TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	administrador TEXT NOT NULL
)`

// SQLiteStore keeps users in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a store from a connection string. Supported forms:
//   - sqlite://path/to/db.sqlite
//   - sqlite:./mock.db
//   - :memory: or the empty string for a private in-memory database
func OpenSQLite(connectionString string) (*SQLiteStore, error) {
	dsn := parseConnectionString(connectionString)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, usuariosTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func parseConnectionString(connStr string) string {
	connStr = strings.TrimSpace(connStr)
	switch {
	case connStr == "":
		return ":memory:"
	case strings.HasPrefix(connStr, "sqlite://"):
		return strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		return strings.TrimPrefix(connStr, "sqlite:")
	}
	return connStr
}

func (s *SQLiteStore) Create(ctx context.Context, u fixtures.User) (Usuario, error) {
	rec := Usuario{User: u, ID: newID()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usuarios (id, nome, email, password, administrador) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, u.Nome, u.Email, u.Password, u.Administrador)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return Usuario{}, ErrEmailTaken
		}
		return Usuario{}, fmt.Errorf("insert failed: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Usuario, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, nome, email, password, administrador FROM usuarios WHERE id = ?`, id)
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Password, &u.Administrador)
	if errors.Is(err, sql.ErrNoRows) {
		return Usuario{}, false, nil
	}
	if err != nil {
		return Usuario{}, false, fmt.Errorf("query failed: %w", err)
	}
	return u, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Usuario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nome, email, password, administrador FROM usuarios ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var users []Usuario
	for rows.Next() {
		var u Usuario
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.Password, &u.Administrador); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
