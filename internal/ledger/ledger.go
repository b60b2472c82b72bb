// Package ledger evaluates purchase and disposal scans against a user's
// session. It performs no I/O: callers load a Session, hand it in, and persist
// whatever comes back.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"plastscan/internal/domain"
)

const (
	// DisposalAward is the number of points granted per proper disposal.
	DisposalAward = 15

	// Separator joins the product barcode and bin code of a disposal scan.
	Separator = "|"

	purchaseName     = "Coca Cola 0.5L"
	purchaseCategory = "Beverage"

	MsgPurchased       = "Coca Cola bottle registered to your account. Remember to scan when disposing!"
	MsgDisposed        = "Perfect! Product properly disposed and points earned!"
	MsgProductNotFound = "Product not found or already disposed"
	MsgNoSession       = "No active user session"
)

// Session is the acting user together with the products registered to them.
type Session struct {
	User     domain.User
	Products []domain.Product
}

func (s Session) clone() Session {
	out := Session{User: s.User, Products: make([]domain.Product, len(s.Products))}
	copy(out.Products, s.Products)
	return out
}

type Ledger struct {
	bins  []domain.Bin
	award int
	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithIDs overrides product ID generation.
func WithIDs(gen func() string) Option { return func(l *Ledger) { l.newID = gen } }

func New(bins []domain.Bin, opts ...Option) *Ledger {
	l := &Ledger{
		bins:  append([]domain.Bin(nil), bins...),
		award: DisposalAward,
		now:   time.Now,
		newID: func() string { return "prod_" + uuid.NewString() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Ledger) Bins() []domain.Bin { return append([]domain.Bin(nil), l.bins...) }

// RegisterPurchase appends a new, not yet disposed product to the session.
func (l *Ledger) RegisterPurchase(s Session, barcode string) (Session, domain.ScanOutcome) {
	if s.User.ID == "" {
		return s, invalid(MsgNoSession)
	}
	p := domain.Product{
		ID:          l.newID(),
		Name:        purchaseName,
		Barcode:     barcode,
		Category:    purchaseCategory,
		OwnerID:     s.User.ID,
		PurchasedAt: l.now().UTC(),
	}
	next := s.clone()
	next.Products = append(next.Products, p)
	return next, domain.ScanOutcome{
		Product: &p,
		Points:  0,
		Action:  domain.ActionPurchased,
		Message: MsgPurchased,
	}
}

// splitCode returns the first two fields of code; fields past the second are
// ignored and a missing bin field is empty.
func splitCode(code string) (productBarcode, binCode string) {
	parts := strings.Split(code, Separator)
	if len(parts) > 1 {
		binCode = parts[1]
	}
	return parts[0], binCode
}

// RecordDisposal consumes "<productBarcode>|<binCode>". The product lookup
// runs before the bin lookup, so an unknown product wins over an unknown bin.
func (l *Ledger) RecordDisposal(s Session, code string) (Session, domain.ScanOutcome) {
	if s.User.ID == "" {
		return s, invalid(MsgNoSession)
	}
	productBarcode, binCode := splitCode(code)

	idx := -1
	for i, p := range s.Products {
		if p.Barcode == productBarcode && !p.Disposed && p.OwnerID == s.User.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, invalid(MsgProductNotFound)
	}

	bin, ok := l.findBin(binCode)
	if !ok {
		return s, invalid(InvalidBinMessage(binCode))
	}

	at := l.now().UTC()
	next := s.clone()
	p := next.Products[idx]
	p.Disposed = true
	p.DisposedAt = &at
	p.DisposalLocation = bin.Location
	p.BinID = bin.ID
	next.Products[idx] = p

	next.User.Points += l.award
	next.User.TotalScanned++

	return next, domain.ScanOutcome{
		Product: &p,
		Bin:     &bin,
		Points:  l.award,
		Action:  domain.ActionProperDisposal,
		Message: MsgDisposed,
	}
}

func (l *Ledger) findBin(code string) (domain.Bin, bool) {
	for _, b := range l.bins {
		if b.Barcode == code {
			return b, true
		}
	}
	return domain.Bin{}, false
}

func InvalidBinMessage(code string) string {
	return fmt.Sprintf(`Invalid bin code "%s". Please enter a valid code (e.g., L520RE).`, code)
}

// Composite joins a product barcode and bin code into disposal input.
func Composite(productBarcode, binCode string) string {
	return productBarcode + Separator + binCode
}

func invalid(msg string) domain.ScanOutcome {
	return domain.ScanOutcome{Action: domain.ActionInvalid, Points: 0, Message: msg}
}
