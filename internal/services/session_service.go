package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"plastscan/internal/domain"
	"plastscan/internal/repos"
	"plastscan/internal/validate"
)

var (
	ErrInvalidLogin = errors.New("enter a name and a valid email")
	ErrNoSession    = errors.New("no active session")
)

// demoProducts are registered to every newly created user.
var demoProducts = []domain.Product{
	{Name: "Coca Cola 0.5L", Barcode: "7311041030424", Category: "Beverage", PurchasedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	{Name: "Sandwich Wrapper", Barcode: "7311041030425", Category: "Food Packaging", PurchasedAt: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
}

// SessionService starts and ends a user's session. There are no credentials:
// a name and an email are enough.
type SessionService struct {
	DB       *sqlx.DB
	Users    *repos.UserRepo
	Sessions *repos.SessionRepo
	Products *repos.ProductRepo
}

func NewSessionService(db *sqlx.DB) *SessionService {
	return &SessionService{
		DB:       db,
		Users:    repos.NewUserRepo(db),
		Sessions: repos.NewSessionRepo(db),
		Products: repos.NewProductRepo(db),
	}
}

// Start binds sid to the user with this email, creating the user (and the
// demo products) on first sight. The second return is true for new users.
func (s *SessionService) Start(ctx context.Context, sid, name, email string) (*domain.User, bool, error) {
	name, okName := validate.Name(name)
	email, okEmail := validate.Email(email)
	if !okName || !okEmail {
		return nil, false, ErrInvalidLogin
	}

	var (
		user    *domain.User
		created bool
	)
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := s.Users.WithTx(tx)
		u, err := users.ByEmail(ctx, email)
		switch {
		case err == nil:
			user = u
		case errors.Is(err, sql.ErrNoRows):
			nu := domain.User{ID: "user_" + uuid.NewString(), Name: name, Email: email, Role: domain.RoleConsumer}
			if err := users.Create(ctx, nu); err != nil {
				return err
			}
			prods := s.Products.WithTx(tx)
			for _, p := range demoProducts {
				p.ID = "prod_" + uuid.NewString()
				p.OwnerID = nu.ID
				if err := prods.Insert(ctx, p); err != nil {
					return err
				}
			}
			user, created = &nu, true
		default:
			return err
		}
		return repos.NewSessionRepo(tx).Bind(ctx, sid, user.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (s *SessionService) End(ctx context.Context, sid string) error {
	return s.Sessions.Unbind(ctx, sid)
}

// Current returns the user bound to sid or ErrNoSession.
func (s *SessionService) Current(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	u, err := s.Sessions.User(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	return u, err
}
