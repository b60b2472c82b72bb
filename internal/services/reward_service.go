package services

import (
	"context"
	"math"
	"time"

	"plastscan/internal/domain"
	"plastscan/internal/repos"
)

const streakDays = 7

type RewardService struct {
	Products *repos.ProductRepo
	Now      func() time.Time
}

func NewRewardService(prods *repos.ProductRepo) *RewardService {
	return &RewardService{Products: prods, Now: time.Now}
}

type RewardsView struct {
	Points       int                  `json:"points"`
	EcoScore     int                  `json:"ecoScore"`
	Rewards      []domain.Reward      `json:"rewards"`
	Achievements []domain.Achievement `json:"achievements"`
	Next         *domain.Reward       `json:"next,omitempty"`
	PointsToNext int                  `json:"pointsToNext"`
}

// Catalog marks each reward available when the balance reaches its price.
func Catalog(points int) []domain.Reward {
	out := make([]domain.Reward, len(domain.RewardCatalog))
	for i, r := range domain.RewardCatalog {
		r.Available = points >= r.Points
		out[i] = r
	}
	return out
}

// EcoScore is points/10 rounded, as a percentage capped at 100.
func EcoScore(points int) int {
	s := int(math.Round(float64(points) / 10))
	if s > 100 {
		return 100
	}
	return s
}

func (s *RewardService) View(ctx context.Context, u *domain.User) (RewardsView, error) {
	prods, err := s.Products.ListByOwner(ctx, u.ID)
	if err != nil {
		return RewardsView{}, err
	}
	v := RewardsView{
		Points:   u.Points,
		EcoScore: EcoScore(u.Points),
		Rewards:  Catalog(u.Points),
		Achievements: []domain.Achievement{
			{Title: "First Scan", Description: "Scanned your first product", Earned: u.TotalScanned >= 1},
			{Title: "Eco Warrior", Description: "Earned 1000+ points", Earned: u.Points >= 1000},
			{Title: "Streak Master", Description: "Scanned products 7 days in a row", Earned: Streak(prods, s.Now()) >= streakDays},
		},
	}
	for _, r := range v.Rewards {
		if !r.Available {
			next := r
			v.Next = &next
			v.PointsToNext = r.Points - u.Points
			break
		}
	}
	return v, nil
}

// Streak counts consecutive calendar days (UTC) with at least one disposal,
// ending today or yesterday.
func Streak(prods []domain.Product, now time.Time) int {
	days := map[string]bool{}
	for _, p := range prods {
		if p.Disposed && p.DisposedAt != nil {
			days[p.DisposedAt.UTC().Format(time.DateOnly)] = true
		}
	}
	day := now.UTC()
	if !days[day.Format(time.DateOnly)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[day.Format(time.DateOnly)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}
