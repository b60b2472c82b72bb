package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plastscan/internal/domain"
	"plastscan/internal/ledger"
)

var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func seedBins() []domain.Bin {
	return []domain.Bin{
		{ID: "tc1", Barcode: "L520RE", Location: "Wang-ung romerike", Type: domain.BinGeneral, Municipality: "Lorenskog"},
		{ID: "tc2", Barcode: "TC002", Location: "Frogner Park - Main Entrance", Type: domain.BinRecycling, Municipality: "Oslo"},
	}
}

func newLedger() *ledger.Ledger {
	n := 0
	return ledger.New(seedBins(),
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDs(func() string { n++; return "prod_test_" + string(rune('0'+n)) }),
	)
}

func session() ledger.Session {
	return ledger.Session{
		User: domain.User{ID: "u1", Name: "Kari", Email: "kari@example.no", Role: domain.RoleConsumer},
		Products: []domain.Product{
			{ID: "prod1", Name: "Coca Cola 0.5L", Barcode: "7311041030424", Category: "Beverage", OwnerID: "u1"},
			{ID: "prod2", Name: "Sandwich Wrapper", Barcode: "7311041030425", Category: "Food Packaging", OwnerID: "u1"},
		},
	}
}

func TestRegisterPurchase(t *testing.T) {
	l := newLedger()
	in := session()

	out, res := l.RegisterPurchase(in, ledger.DemoBarcode)

	assert.Equal(t, domain.ActionPurchased, res.Action)
	assert.Equal(t, 0, res.Points)
	assert.Equal(t, ledger.MsgPurchased, res.Message)
	require.NotNil(t, res.Product)
	assert.False(t, res.Product.Disposed)
	assert.Equal(t, "u1", res.Product.OwnerID)
	assert.Equal(t, ledger.DemoBarcode, res.Product.Barcode)
	assert.Equal(t, fixedNow, res.Product.PurchasedAt)

	require.Len(t, out.Products, 3)
	assert.Equal(t, *res.Product, out.Products[2])
	assert.Len(t, in.Products, 2, "input session must not change")
	assert.Equal(t, in.User, out.User, "purchase awards nothing")
}

func TestRegisterPurchase_NoUser(t *testing.T) {
	l := newLedger()
	out, res := l.RegisterPurchase(ledger.Session{}, "123")
	assert.Equal(t, domain.ActionInvalid, res.Action)
	assert.Equal(t, ledger.MsgNoSession, res.Message)
	assert.Empty(t, out.Products)
}

func TestRecordDisposal(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantAction domain.Action
		wantMsg    string
		wantPoints int
	}{
		{"proper disposal", "7311041030424|L520RE", domain.ActionProperDisposal, ledger.MsgDisposed, 15},
		{"unknown product", "0000000000000|L520RE", domain.ActionInvalid, ledger.MsgProductNotFound, 0},
		{"unknown bin", "7311041030424|XYZ", domain.ActionInvalid, `Invalid bin code "XYZ". Please enter a valid code (e.g., L520RE).`, 0},
		{"bin match is exact", "7311041030424|l520re", domain.ActionInvalid, `Invalid bin code "l520re". Please enter a valid code (e.g., L520RE).`, 0},
		{"missing separator", "7311041030424", domain.ActionInvalid, `Invalid bin code "". Please enter a valid code (e.g., L520RE).`, 0},
		{"fields past the bin are ignored", "7311041030424|L520RE|extra", domain.ActionProperDisposal, ledger.MsgDisposed, 15},
		{"empty bin field", "7311041030424||L520RE", domain.ActionInvalid, `Invalid bin code "". Please enter a valid code (e.g., L520RE).`, 0},
		{"product checked before bin", "nope|nope", domain.ActionInvalid, ledger.MsgProductNotFound, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLedger()
			in := session()

			out, res := l.RecordDisposal(in, tc.code)

			assert.Equal(t, tc.wantAction, res.Action)
			assert.Equal(t, tc.wantMsg, res.Message)
			assert.Equal(t, tc.wantPoints, res.Points)
			if tc.wantAction == domain.ActionInvalid {
				assert.Nil(t, res.Product)
				assert.Equal(t, in, out, "invalid disposal must not mutate")
			}
		})
	}
}

func TestRecordDisposal_UpdatesProductAndUser(t *testing.T) {
	l := newLedger()
	in := session()
	in.User.Points = 100
	in.User.TotalScanned = 4

	out, res := l.RecordDisposal(in, "7311041030424|L520RE")

	require.Equal(t, domain.ActionProperDisposal, res.Action)
	require.NotNil(t, res.Product)
	require.NotNil(t, res.Bin)
	assert.True(t, res.Product.Disposed)
	assert.Equal(t, "Wang-ung romerike", res.Product.DisposalLocation)
	assert.Equal(t, "tc1", res.Product.BinID)
	require.NotNil(t, res.Product.DisposedAt)
	assert.Equal(t, fixedNow, *res.Product.DisposedAt)
	assert.Equal(t, "tc1", res.Bin.ID)

	assert.Equal(t, 115, out.User.Points)
	assert.Equal(t, 5, out.User.TotalScanned)
	assert.True(t, out.Products[0].Disposed)
	assert.False(t, out.Products[1].Disposed)

	assert.False(t, in.Products[0].Disposed, "input session must not change")
	assert.Equal(t, 100, in.User.Points)
}

func TestRecordDisposal_Idempotence(t *testing.T) {
	l := newLedger()
	s := session()

	s, first := l.RecordDisposal(s, "7311041030424|L520RE")
	require.Equal(t, domain.ActionProperDisposal, first.Action)
	assert.Equal(t, 15, first.Points)
	assert.Equal(t, "Wang-ung romerike", first.Product.DisposalLocation)

	s, second := l.RecordDisposal(s, "7311041030424|L520RE")
	assert.Equal(t, domain.ActionInvalid, second.Action)
	assert.Equal(t, ledger.MsgProductNotFound, second.Message)
	assert.Equal(t, 15, s.User.Points)
	assert.Equal(t, 1, s.User.TotalScanned)
}

func TestRecordDisposal_DuplicateBarcodesConsumedInOrder(t *testing.T) {
	l := newLedger()
	s := session()
	s, _ = l.RegisterPurchase(s, "7311041030424")

	s, r1 := l.RecordDisposal(s, "7311041030424|TC002")
	s, r2 := l.RecordDisposal(s, "7311041030424|L520RE")
	_, r3 := l.RecordDisposal(s, "7311041030424|L520RE")

	assert.Equal(t, "prod1", r1.Product.ID)
	assert.Equal(t, "Frogner Park - Main Entrance", r1.Product.DisposalLocation)
	assert.NotEqual(t, "prod1", r2.Product.ID)
	assert.Equal(t, domain.ActionInvalid, r3.Action)
}

func TestRecordDisposal_IgnoresOtherOwners(t *testing.T) {
	l := newLedger()
	s := session()
	s.Products[0].OwnerID = "someone-else"

	_, res := l.RecordDisposal(s, "7311041030424|L520RE")
	assert.Equal(t, domain.ActionInvalid, res.Action)
	assert.Equal(t, ledger.MsgProductNotFound, res.Message)
}

func TestComposite(t *testing.T) {
	assert.Equal(t, "7311041030424|L520RE", ledger.Composite("7311041030424", "L520RE"))
}

func TestBinsIsACopy(t *testing.T) {
	l := newLedger()
	b := l.Bins()
	b[0].Barcode = "CHANGED"
	_, res := l.RecordDisposal(session(), "7311041030424|L520RE")
	assert.Equal(t, domain.ActionProperDisposal, res.Action)
}
