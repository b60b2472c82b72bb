package repos_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plastscan/internal/domain"
	"plastscan/internal/repos"
	"plastscan/internal/scanflow"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mkUser(t *testing.T, db *sqlx.DB, id, email string) {
	t.Helper()
	err := repos.NewUserRepo(db).Create(context.Background(), domain.User{ID: id, Name: "Test", Email: email, Role: domain.RoleConsumer})
	require.NoError(t, err)
}

func TestBinsSeededByMigrations(t *testing.T) {
	db := memdb(t)
	bins, err := repos.NewBinRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, bins, 3)
	assert.Equal(t, domain.Bin{ID: "tc1", Barcode: "L520RE", Location: "Wang-ung romerike", Type: "general", Municipality: "Lorenskog"}, bins[0])

	b, err := repos.NewBinRepo(db).ByBarcode(context.Background(), "TC002")
	require.NoError(t, err)
	assert.Equal(t, "recycling", b.Type)
}

func TestUserRepo_EmailIsCaseInsensitive(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	mkUser(t, db, "u1", "Kari@Example.no")

	u, err := repos.NewUserRepo(db).ByEmail(ctx, "kari@example.NO")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	err = repos.NewUserRepo(db).Create(ctx, domain.User{ID: "u2", Name: "Dup", Email: "KARI@example.no", Role: domain.RoleConsumer})
	assert.Error(t, err, "duplicate email must be rejected")
}

func TestProductRepo_InsertListAndDispose(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	mkUser(t, db, "u1", "a@b.no")
	prods := repos.NewProductRepo(db)

	bought := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, prods.Insert(ctx, domain.Product{ID: "p2", OwnerID: "u1", Name: "B", Barcode: "2", Category: "c", PurchasedAt: bought.Add(time.Hour)}))
	require.NoError(t, prods.Insert(ctx, domain.Product{ID: "p1", OwnerID: "u1", Name: "A", Barcode: "1", Category: "c", PurchasedAt: bought}))

	list, err := prods.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID, "ordered by purchase time")
	assert.Equal(t, bought, list[0].PurchasedAt)
	assert.Nil(t, list[0].DisposedAt)

	at := bought.Add(24 * time.Hour)
	p := list[0]
	p.Disposed, p.DisposedAt, p.DisposalLocation, p.BinID = true, &at, "Wang-ung romerike", "tc1"
	require.NoError(t, prods.MarkDisposed(ctx, p))

	got, err := prods.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Disposed)
	require.NotNil(t, got.DisposedAt)
	assert.Equal(t, at, *got.DisposedAt)
	assert.Equal(t, "tc1", got.BinID)

	assert.ErrorIs(t, prods.MarkDisposed(ctx, p), repos.ErrAlreadyDisposed)
}

func TestProductRepo_DisposedCannotRevert(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	mkUser(t, db, "u1", "a@b.no")
	require.NoError(t, repos.NewProductRepo(db).Insert(ctx, domain.Product{ID: "p1", OwnerID: "u1", Name: "A", Barcode: "1", Category: "c", PurchasedAt: time.Now(), Disposed: true}))

	_, err := db.Exec(`UPDATE products SET disposed = 0 WHERE id = 'p1'`)
	assert.Error(t, err)
}

func TestSessionRepo_BindFlowUnbind(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	mkUser(t, db, "u1", "a@b.no")
	sessions := repos.NewSessionRepo(db)

	_, err := sessions.User(ctx, "sid-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	f, err := sessions.Flow(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, scanflow.AwaitingProduct, f.Current())

	require.NoError(t, sessions.Bind(ctx, "sid-1", "u1"))
	u, err := sessions.User(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	var stored string
	require.NoError(t, db.Get(&stored, `SELECT id FROM sessions`))
	assert.NotEqual(t, "sid-1", stored, "raw sid must not be stored")
	assert.Len(t, stored, 64)

	f, err = f.ScanProduct("7311041030424")
	require.NoError(t, err)
	require.NoError(t, sessions.SaveFlow(ctx, "sid-1", f))
	loaded, err := sessions.Flow(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, f, loaded)

	require.NoError(t, sessions.Unbind(ctx, "sid-1"))
	_, err = sessions.User(ctx, "sid-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	loaded, err = sessions.Flow(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, scanflow.AwaitingProduct, loaded.Current())
}

func TestFineRepo_ListByUser(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	mkUser(t, db, "u1", "a@b.no")
	_, err := db.Exec(`INSERT INTO fines(id,user_id,amount,location,date,paid,due_date,recorded_by)
		VALUES ('f1','u1',500,'Oslo S','2024-01-10T00:00:00Z',0,'2024-02-10T00:00:00Z','w1')`)
	require.NoError(t, err)

	fines, err := repos.NewFineRepo(db).ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fines, 1)
	assert.Equal(t, 500, fines[0].Amount)
	assert.False(t, fines[0].Paid)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), fines[0].DueDate)
	assert.Empty(t, fines[0].ProductID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	err := repos.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := repos.NewUserRepo(tx).Create(ctx, domain.User{ID: "u1", Name: "T", Email: "t@t.no", Role: domain.RoleConsumer}); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	assert.ErrorIs(t, err, sql.ErrTxDone)

	_, err = repos.NewUserRepo(db).ByID(ctx, "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
