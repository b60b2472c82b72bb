package repos

import (
	"context"

	"plastscan/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id,name,email,role,points,total_scanned,total_fines,unpaid_fines`

type UserRepo struct{ DB sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{DB: tx} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.DB, &u, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.DB, &u, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users(id,name,email,role,points,total_scanned,total_fines,unpaid_fines)
		VALUES(?,?,?,?,?,?,?,?)
	`, u.ID, u.Name, u.Email, u.Role, u.Points, u.TotalScanned, u.TotalFines, u.UnpaidFines)
	return err
}

// AddDisposal credits points and bumps the scanned counter by one.
func (r *UserRepo) AddDisposal(ctx context.Context, userID string, points int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET points = points + ?, total_scanned = total_scanned + 1
		WHERE id = ?
	`, points, userID)
	return err
}
