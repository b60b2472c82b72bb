package services

import (
	"context"
	"time"

	"plastscan/internal/domain"
	"plastscan/internal/repos"
)

const (
	FinePaid    = "paid"
	FineOverdue = "overdue"
	FinePending = "pending"
)

type FineService struct {
	Fines *repos.FineRepo
	Now   func() time.Time
}

func NewFineService(fines *repos.FineRepo) *FineService {
	return &FineService{Fines: fines, Now: time.Now}
}

type FineLine struct {
	domain.Fine
	Status string `json:"status"`
}

type FinesView struct {
	Unpaid      []FineLine `json:"unpaid"`
	Paid        []FineLine `json:"paid"`
	TotalUnpaid int        `json:"totalUnpaid"`
}

func FineStatus(f domain.Fine, now time.Time) string {
	switch {
	case f.Paid:
		return FinePaid
	case now.After(f.DueDate):
		return FineOverdue
	default:
		return FinePending
	}
}

func (s *FineService) View(ctx context.Context, userID string) (FinesView, error) {
	fines, err := s.Fines.ListByUser(ctx, userID)
	if err != nil {
		return FinesView{}, err
	}
	now := s.Now()
	v := FinesView{Unpaid: []FineLine{}, Paid: []FineLine{}}
	for _, f := range fines {
		line := FineLine{Fine: f, Status: FineStatus(f, now)}
		if f.Paid {
			v.Paid = append(v.Paid, line)
			continue
		}
		v.Unpaid = append(v.Unpaid, line)
		v.TotalUnpaid += f.Amount
	}
	return v, nil
}
