package userstore_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

func newTestStore(t *testing.T) *userstore.RedisUserStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return userstore.NewRedisUserStore(client, zerolog.New(io.Discard))
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "u1")
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.AccessFlags.CanMessage || !created.AccessFlags.CanPurchase {
		t.Fatalf("expected both flags true by default, got %+v", created.AccessFlags)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("expected user_id u1, got %s", got.UserID)
	}
}

func TestSaveRoundTripsZipCodes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	agg := model.NewUserAggregate("u2")
	agg.CreditCards["c1"] = "10001"
	agg.TotalCreditCards = 1
	agg.UniqueZipCodes.Add("10001")

	if err := store.Save(ctx, agg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalCreditCards != 1 {
		t.Fatalf("expected total_credit_cards=1, got %d", got.TotalCreditCards)
	}
	if got.UniqueZipCodes.Len() != 1 {
		t.Fatalf("expected 1 unique zip, got %d", got.UniqueZipCodes.Len())
	}
}

func TestCountReflectsStoredUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Create(ctx, id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected count=3, got %d", n)
	}
}

func TestClearRemovesAllUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _ = store.Create(ctx, "a")
	_, _ = store.Create(ctx, "b")

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected count=0 after clear, got %d", n)
	}
}

func TestDeleteRemovesUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _ = store.Create(ctx, "a")
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := store.Get(ctx, "a")
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}
