package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"plastscan/internal/config"
	"plastscan/internal/ledger"
	"plastscan/internal/repos"
	"plastscan/internal/services"
)

type Deps struct {
	Sessions *services.SessionService
	Scans    *services.ScanService

	SessionHandler   *SessionHandler
	DashboardHandler *DashboardHandler
	ScanHandler      *ScanHandler
	AccountHandler   *AccountHandler
	APIHandler       *APIHandler
}

func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config) (*Deps, error) {
	sessionSvc := services.NewSessionService(db)
	scanSvc, err := services.NewScanService(ctx, db, ledger.NewFixedDecoder(cfg.ScanDelay))
	if err != nil {
		return nil, err
	}
	rewardSvc := services.NewRewardService(repos.NewProductRepo(db))
	fineSvc := services.NewFineService(repos.NewFineRepo(db))

	return &Deps{
		Sessions:         sessionSvc,
		Scans:            scanSvc,
		SessionHandler:   &SessionHandler{Sessions: sessionSvc, SecureCookie: cfg.CookieSecure},
		DashboardHandler: &DashboardHandler{Scans: scanSvc},
		ScanHandler:      &ScanHandler{Scans: scanSvc},
		AccountHandler:   &AccountHandler{Rewards: rewardSvc, Fines: fineSvc},
		APIHandler:       &APIHandler{Scans: scanSvc, Rewards: rewardSvc, Fines: fineSvc},
	}, nil
}
