package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/lunaredge/storefront/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM storefront_state WHERE key = $1`)).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := store.Get(context.Background(), "orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value: %s", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM storefront_state WHERE key = $1`)).
		WithArgs("user").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.Get(context.Background(), "user"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreSetUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO storefront_state").
		WithArgs("user", []byte(`{"name":"x"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "user", []byte(`{"name":"x"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreRemove(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM storefront_state WHERE key = $1`)).
		WithArgs("wishlist").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Remove(context.Background(), "wishlist"); err != nil {
		t.Fatalf("remove: %v", err)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "it_user", []byte(`{"name":"integration"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "it_user")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"name":"integration"}` {
		t.Fatalf("round trip mismatch: %s", got)
	}
	if err := store.Remove(ctx, "it_user"); err != nil {
		t.Fatalf("remove: %v", err)
	}
}
