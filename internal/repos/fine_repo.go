package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"plastscan/internal/domain"
)

// FineRepo is read-only: nothing in the application issues fines.
type FineRepo struct{ db sqlx.ExtContext }

func NewFineRepo(db sqlx.ExtContext) *FineRepo { return &FineRepo{db: db} }

type fineRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	ProductID  sql.NullString `db:"product_id"`
	Amount     int            `db:"amount"`
	Location   string         `db:"location"`
	Date       string         `db:"date"`
	Paid       bool           `db:"paid"`
	DueDate    string         `db:"due_date"`
	RecordedBy string         `db:"recorded_by"`
}

func (r *FineRepo) ListByUser(ctx context.Context, userID string) ([]domain.Fine, error) {
	var rows []fineRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT id, user_id, product_id, amount, location, date, paid, due_date, recorded_by
		FROM fines
		WHERE user_id = ?
		ORDER BY date DESC
	`, userID); err != nil {
		return nil, err
	}
	out := make([]domain.Fine, 0, len(rows))
	for _, row := range rows {
		date, err := parseTime(row.Date)
		if err != nil {
			return nil, err
		}
		due, err := parseTime(row.DueDate)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Fine{
			ID:         row.ID,
			UserID:     row.UserID,
			ProductID:  row.ProductID.String,
			Amount:     row.Amount,
			Location:   row.Location,
			Date:       date,
			Paid:       row.Paid,
			DueDate:    due,
			RecordedBy: row.RecordedBy,
		})
	}
	return out, nil
}
