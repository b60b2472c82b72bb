package repos

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/blake2b"

	"plastscan/internal/domain"
	"plastscan/internal/scanflow"
)

// SessionRepo stores only a hash of the sid cookie, never the raw value.
type SessionRepo struct{ db sqlx.ExtContext }

func NewSessionRepo(db sqlx.ExtContext) *SessionRepo { return &SessionRepo{db: db} }

func sessionKey(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:])
}

func (r *SessionRepo) Bind(ctx context.Context, sid, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions(id,user_id,last_seen)
		VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,flow=NULL,last_seen=CURRENT_TIMESTAMP
	`, sessionKey(sid), userID)
	return err
}

// User returns the user bound to sid, or sql.ErrNoRows.
func (r *SessionRepo) User(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, `
		SELECT u.id,u.name,u.email,u.role,u.points,u.total_scanned,u.total_fines,u.unpaid_fines
		FROM sessions s
		JOIN users u ON u.id=s.user_id
		WHERE s.id=?`, sessionKey(sid))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SessionRepo) Unbind(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,flow=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sessionKey(sid))
	return err
}

// Flow loads the disposal flow; unknown sessions get a fresh flow.
func (r *SessionRepo) Flow(ctx context.Context, sid string) (scanflow.Flow, error) {
	var raw sql.NullString
	err := sqlx.GetContext(ctx, r.db, &raw, `SELECT flow FROM sessions WHERE id=?`, sessionKey(sid))
	if err == sql.ErrNoRows || (err == nil && !raw.Valid) {
		return scanflow.New(), nil
	}
	if err != nil {
		return scanflow.Flow{}, err
	}
	var f scanflow.Flow
	if err := json.Unmarshal([]byte(raw.String), &f); err != nil {
		return scanflow.Flow{}, err
	}
	return f, nil
}

func (r *SessionRepo) SaveFlow(ctx context.Context, sid string, f scanflow.Flow) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE sessions SET flow=?,last_seen=CURRENT_TIMESTAMP WHERE id=?`, string(b), sessionKey(sid))
	return err
}
