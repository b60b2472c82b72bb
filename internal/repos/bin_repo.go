package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"plastscan/internal/domain"
)

// BinRepo reads the bin reference table seeded by migrations.
type BinRepo struct{ db sqlx.ExtContext }

func NewBinRepo(db sqlx.ExtContext) *BinRepo { return &BinRepo{db: db} }

func (r *BinRepo) List(ctx context.Context) ([]domain.Bin, error) {
	var out []domain.Bin
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT id, barcode, location, type, municipality
		FROM bins
		ORDER BY id
	`)
	return out, err
}

func (r *BinRepo) ByBarcode(ctx context.Context, barcode string) (domain.Bin, error) {
	var b domain.Bin
	err := sqlx.GetContext(ctx, r.db, &b, `
		SELECT id, barcode, location, type, municipality
		FROM bins
		WHERE barcode = ?
	`, barcode)
	return b, err
}
