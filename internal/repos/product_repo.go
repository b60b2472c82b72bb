package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"plastscan/internal/domain"
)

// ErrAlreadyDisposed is returned when a disposal targets a product that is
// already disposed (or does not exist).
var ErrAlreadyDisposed = errors.New("product already disposed")

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

type productRow struct {
	ID               string         `db:"id"`
	OwnerID          string         `db:"owner_id"`
	Name             string         `db:"name"`
	Barcode          string         `db:"barcode"`
	Category         string         `db:"category"`
	PurchasedAt      string         `db:"purchased_at"`
	Disposed         bool           `db:"disposed"`
	DisposedAt       sql.NullString `db:"disposed_at"`
	DisposalLocation sql.NullString `db:"disposal_location"`
	BinID            sql.NullString `db:"bin_id"`
}

func (row productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:               row.ID,
		Name:             row.Name,
		Barcode:          row.Barcode,
		Category:         row.Category,
		OwnerID:          row.OwnerID,
		Disposed:         row.Disposed,
		DisposalLocation: row.DisposalLocation.String,
		BinID:            row.BinID.String,
	}
	var err error
	if p.PurchasedAt, err = parseTime(row.PurchasedAt); err != nil {
		return domain.Product{}, err
	}
	if row.DisposedAt.Valid {
		t, err := parseTime(row.DisposedAt.String)
		if err != nil {
			return domain.Product{}, err
		}
		p.DisposedAt = &t
	}
	return p, nil
}

const productColumns = `id, owner_id, name, barcode, category, purchased_at, disposed, disposed_at, disposal_location, bin_id`

// ListByOwner returns a user's products in registration order.
func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT `+productColumns+`
		FROM products
		WHERE owner_id = ?
		ORDER BY purchased_at, rowid
	`, ownerID); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	if err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return domain.Product{}, err
	}
	return row.toDomain()
}

func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products(id, owner_id, name, barcode, category, purchased_at, disposed, disposed_at, disposal_location, bin_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.OwnerID, p.Name, p.Barcode, p.Category, formatTime(p.PurchasedAt), p.Disposed,
		nullTime(p.DisposedAt), nullString(p.DisposalLocation), nullString(p.BinID))
	return err
}

// MarkDisposed writes the disposal fields of p. Only a not yet disposed row
// is touched; otherwise ErrAlreadyDisposed.
func (r *ProductRepo) MarkDisposed(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET disposed = 1, disposed_at = ?, disposal_location = ?, bin_id = ?
		WHERE id = ? AND disposed = 0
	`, nullTime(p.DisposedAt), nullString(p.DisposalLocation), nullString(p.BinID), p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyDisposed
	}
	return nil
}
