package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"plastscan/internal/domain"
	"plastscan/internal/ledger"
	"plastscan/internal/repos"
	"plastscan/internal/scanflow"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBinNotFound     = errors.New("bin not found")
)

// ScanService loads a user's session from storage, runs the ledger on it and
// writes back what changed, all in one transaction.
type ScanService struct {
	DB       *sqlx.DB
	Users    *repos.UserRepo
	Products *repos.ProductRepo
	Sessions *repos.SessionRepo
	BinRepo  *repos.BinRepo
	Ledger   *ledger.Ledger
	Decoder  ledger.Decoder
}

// NewScanService builds the ledger from the bin table.
func NewScanService(ctx context.Context, db *sqlx.DB, dec ledger.Decoder) (*ScanService, error) {
	binRepo := repos.NewBinRepo(db)
	bins, err := binRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bins: %w", err)
	}
	return &ScanService{
		DB:       db,
		Users:    repos.NewUserRepo(db),
		Products: repos.NewProductRepo(db),
		Sessions: repos.NewSessionRepo(db),
		BinRepo:  binRepo,
		Ledger:   ledger.New(bins),
		Decoder:  dec,
	}, nil
}

func (s *ScanService) Decode(ctx context.Context, frame []byte) (string, error) {
	return s.Decoder.Decode(ctx, frame)
}

func (s *ScanService) Bins() []domain.Bin { return s.Ledger.Bins() }

func (s *ScanService) ListProducts(ctx context.Context, userID string) ([]domain.Product, error) {
	return s.Products.ListByOwner(ctx, userID)
}

// Product returns one of userID's products. Products of other users are
// reported as not found.
func (s *ScanService) Product(ctx context.Context, userID, id string) (domain.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && p.OwnerID != userID) {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

// Bin looks a bin up by the exact code printed on it.
func (s *ScanService) Bin(ctx context.Context, code string) (domain.Bin, error) {
	b, err := s.BinRepo.ByBarcode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bin{}, ErrBinNotFound
	}
	return b, err
}

func (s *ScanService) Purchase(ctx context.Context, userID, barcode string) (domain.ScanOutcome, error) {
	var out domain.ScanOutcome
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sess, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		_, out = s.Ledger.RegisterPurchase(sess, barcode)
		if !out.OK() {
			return nil
		}
		return s.Products.WithTx(tx).Insert(ctx, *out.Product)
	})
	return out, err
}

func (s *ScanService) Dispose(ctx context.Context, userID, composite string) (domain.ScanOutcome, error) {
	var out domain.ScanOutcome
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sess, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		_, out = s.Ledger.RecordDisposal(sess, composite)
		if !out.OK() {
			return nil
		}
		if err := s.Products.WithTx(tx).MarkDisposed(ctx, *out.Product); err != nil {
			return err
		}
		return s.Users.WithTx(tx).AddDisposal(ctx, userID, out.Points)
	})
	return out, err
}

func (s *ScanService) load(ctx context.Context, tx *sqlx.Tx, userID string) (ledger.Session, error) {
	u, err := s.Users.WithTx(tx).ByID(ctx, userID)
	if err != nil {
		return ledger.Session{}, fmt.Errorf("load user %s: %w", userID, err)
	}
	prods, err := s.Products.WithTx(tx).ListByOwner(ctx, userID)
	if err != nil {
		return ledger.Session{}, fmt.Errorf("load products: %w", err)
	}
	return ledger.Session{User: *u, Products: prods}, nil
}

// Flow returns the disposal flow of the browser session sid.
func (s *ScanService) Flow(ctx context.Context, sid string) (scanflow.Flow, error) {
	return s.Sessions.Flow(ctx, sid)
}

// ScanProduct decodes frame and advances the flow to the bin step.
func (s *ScanService) ScanProduct(ctx context.Context, sid string, frame []byte) (scanflow.Flow, error) {
	f, err := s.Sessions.Flow(ctx, sid)
	if err != nil {
		return f, err
	}
	if f.Current() != scanflow.AwaitingProduct {
		return f, scanflow.ErrInvalidTransition
	}
	barcode, err := s.Decode(ctx, frame)
	if err != nil {
		return f, fmt.Errorf("decode: %w", err)
	}
	next, err := f.ScanProduct(barcode)
	if err != nil {
		return f, err
	}
	return next, s.Sessions.SaveFlow(ctx, sid, next)
}

// SubmitBin records the disposal for the scanned product and binCode and
// moves the flow to the result step, whatever the outcome.
func (s *ScanService) SubmitBin(ctx context.Context, sid, userID, binCode string) (scanflow.Flow, domain.ScanOutcome, error) {
	f, err := s.Sessions.Flow(ctx, sid)
	if err != nil {
		return f, domain.ScanOutcome{}, err
	}
	code, err := f.Composite(binCode)
	if err != nil {
		return f, domain.ScanOutcome{}, err
	}
	out, err := s.Dispose(ctx, userID, code)
	if err != nil {
		return f, out, err
	}
	next, err := f.ShowResult(out)
	if err != nil {
		return f, out, err
	}
	return next, out, s.Sessions.SaveFlow(ctx, sid, next)
}

func (s *ScanService) ResetFlow(ctx context.Context, sid string) (scanflow.Flow, error) {
	f := scanflow.New()
	return f, s.Sessions.SaveFlow(ctx, sid, f)
}
