package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/pkg/database"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "bills.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Migrate())
	return db
}

func newBill(id, email, date string) *entity.Bill {
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.Bill{
		ID:         id,
		Status:     entity.StatusPending,
		Date:       date,
		Amount:     120.5,
		VAT:        "20",
		Pct:        20,
		Type:       "Transports",
		Name:       "Taxi",
		Commentary: "aéroport",
		FileURL:    "http://localhost:8080/files/" + id + ".jpg",
		FileName:   "taxi.jpg",
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestBillRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewBillRepository(db.DB, zap.NewNop())

	require.NoError(t, repo.Create(ctx, newBill("b1", "a@a", "2004-04-04")))
	require.NoError(t, repo.Create(ctx, newBill("b2", "b@b", "2003-03-03")))

	got, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, 120.5, got.Amount)
	assert.Equal(t, "aéroport", got.Commentary)
	assert.Equal(t, "a@a", got.Email)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := repo.ListByEmail(ctx, "b@b")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "b2", own[0].ID)

	none, err := repo.ListByEmail(ctx, "c@c")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	got.Status = entity.StatusRefused
	got.CommentAdmin = "pas la bonne facture"
	got.Name = "ignored"
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRefused, reloaded.Status)
	assert.Equal(t, "pas la bonne facture", reloaded.CommentAdmin)
	assert.Equal(t, "Taxi", reloaded.Name, "only review fields are updated")

	err = repo.Update(ctx, &entity.Bill{ID: "nope", Status: entity.StatusAccepted})
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestBillRepository_Transaction(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewBillRepository(db.DB, zap.NewNop())
	txManager := sqlite.NewDB(db.DB, zap.NewNop())

	rollback := errors.New("rollback")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NotNil(t, sqlite.TxFromContext(txCtx))
		if err := repo.Create(txCtx, newBill("tx1", "a@a", "2001-01-01")); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	got, err := repo.GetByID(ctx, "tx1")
	require.NoError(t, err)
	assert.Nil(t, got, "insert is rolled back")

	err = txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return repo.Create(txCtx, newBill("tx2", "a@a", "2001-01-01"))
	})
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, "tx2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())

	user := &entity.User{
		ID:           "u1",
		Email:        "admin@test.tld",
		Type:         entity.UserTypeAdmin,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "admin@test.tld")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, entity.UserTypeAdmin, got.Type)
	assert.Equal(t, "hash", got.PasswordHash)

	missing, err := repo.GetByEmail(ctx, "nobody@test.tld")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user.ID = "u2"
	assert.ErrorIs(t, repo.Create(ctx, user), port.ErrConflict)
}
