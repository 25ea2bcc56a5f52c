package repos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

type AuditRepo struct{ db *sqlx.DB }

func NewAuditRepo(db *sqlx.DB) *AuditRepo { return &AuditRepo{db: db} }

type auditRow struct {
	ID        int64          `db:"id"`
	UserID    sql.NullInt64  `db:"user_id"`
	ShopID    sql.NullInt64  `db:"shop_id"`
	Action    string         `db:"action"`
	Model     sql.NullString `db:"model"`
	ObjectID  sql.NullString `db:"object_id"`
	Details   string         `db:"details"`
	IP        sql.NullString `db:"ip_address"`
	CreatedAt string         `db:"created_at"`
}

func nullInt(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: v != 0} }

func nullStr(v string) sql.NullString { return sql.NullString{String: v, Valid: v != ""} }

// Insert appends an event and sets ev.ID. Rows are never updated or deleted.
func (r *AuditRepo) Insert(ctx context.Context, ev *domain.AuditEvent) error {
	details := ev.Details
	if details == nil {
		details = map[string]any{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs(user_id, shop_id, action, model, object_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nullInt(ev.UserID), nullInt(ev.ShopID), string(ev.Action), nullStr(ev.Model), nullStr(ev.ObjectID),
		string(b), nullStr(ev.IP), ev.CreatedAt)
	if err != nil {
		return err
	}
	ev.ID, err = res.LastInsertId()
	return err
}

// List returns a shop's events, newest first.
func (r *AuditRepo) List(ctx context.Context, shopID int64, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, shop_id, action, model, object_id, details, ip_address, created_at
		FROM audit_logs
		WHERE shop_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, shopID, limit); err != nil {
		return nil, err
	}
	out := make([]domain.AuditEvent, 0, len(rows))
	for _, row := range rows {
		ev := domain.AuditEvent{
			ID:        row.ID,
			UserID:    row.UserID.Int64,
			ShopID:    row.ShopID.Int64,
			Action:    domain.AuditAction(row.Action),
			Model:     row.Model.String,
			ObjectID:  row.ObjectID.String,
			IP:        row.IP.String,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal([]byte(row.Details), &ev.Details); err != nil {
			ev.Details = map[string]any{"raw": row.Details}
		}
		out = append(out, ev)
	}
	return out, nil
}
