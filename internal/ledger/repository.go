package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SetManualVIP(ctx context.Context, id string, vip bool) error

	// CreditUser adds amount to the user's balance.
	CreditUser(ctx context.Context, id string, amount int) error
	// DebitUser subtracts amount from the user's balance in a single
	// conditional UPDATE. Returns ErrInsufficientFunds when the balance is
	// below amount (or the user does not exist).
	DebitUser(ctx context.Context, id string, amount int) error

	GetEconomy(ctx context.Context) (*Economy, error)
	SetEconomyValue(ctx context.Context, key string, value int) error

	LogExport(ctx context.Context, rec *ExportRecord) error
	ListExports(ctx context.Context, userID string, limit int) ([]*ExportRecord, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, role, diamonds, manual_vip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.DisplayName, u.Role, u.Diamonds, boolToInt(u.ManualVIP), u.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, diamonds, manual_vip, created_at
		FROM users WHERE id = ?
	`, id)
	return r.scanUser(row)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, diamonds, manual_vip, created_at
		FROM users WHERE email = ?
	`, email)
	return r.scanUser(row)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, display_name, role, diamonds, manual_vip, created_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		var vip int
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Diamonds, &vip, &createdAt); err != nil {
			return nil, err
		}
		u.ManualVIP = vip != 0
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) SetManualVIP(ctx context.Context, id string, vip bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET manual_vip = ? WHERE id = ?`, boolToInt(vip), id)
	return err
}

func (r *SQLiteRepository) CreditUser(ctx context.Context, id string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative: %d", amount)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE users SET diamonds = diamonds + ? WHERE id = ?`, amount, id)
	return err
}

func (r *SQLiteRepository) DebitUser(ctx context.Context, id string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must not be negative: %d", amount)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET diamonds = diamonds - ?
		WHERE id = ? AND diamonds >= ?
	`, amount, id, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (r *SQLiteRepository) GetEconomy(ctx context.Context) (*Economy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM economy`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eco := &Economy{ExportCost: 1, VIPThreshold: 100}
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case EconomyKeyExportCost:
			eco.ExportCost = value
		case EconomyKeyVIPThreshold:
			eco.VIPThreshold = value
		}
	}
	return eco, rows.Err()
}

func (r *SQLiteRepository) SetEconomyValue(ctx context.Context, key string, value int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO economy (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) LogExport(ctx context.Context, rec *ExportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_log (id, user_id, kind, format, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.Kind, rec.Format, rec.Cost, rec.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListExports(ctx context.Context, userID string, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, format, cost, created_at
		FROM export_log WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Format, &rec.Cost, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM agent_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO agent_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*User, error) {
	var u User
	var vip int
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Diamonds, &vip, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.ManualVIP = vip != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
