package consumer_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/consumer"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/eventhandler"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/rules"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/streamlog"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/tripwire"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

type testRig struct {
	log   *streamlog.MemoryLog
	store *userstore.RedisUserStore
	twCtl *tripwire.RedisController
	c     *consumer.Consumer
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	userMr := miniredis.RunT(t)
	userClient := redis.NewClient(&redis.Options{Addr: userMr.Addr()})
	t.Cleanup(func() { _ = userClient.Close() })
	store := userstore.NewRedisUserStore(userClient, zerolog.New(io.Discard))

	twMr := miniredis.RunT(t)
	twClient := redis.NewClient(&redis.Options{Addr: twMr.Addr()})
	t.Cleanup(func() { _ = twClient.Close() })
	twCtl := tripwire.NewRedisController(twClient, zerolog.New(io.Discard), 300*time.Second, 0.05)

	log := streamlog.NewMemoryLog()
	handlers := eventhandler.NewRegistry(store)
	ruleReg, err := rules.NewRegistry(rules.DefaultRules()...)
	if err != nil {
		t.Fatalf("new rule registry: %v", err)
	}
	processor := rules.NewProcessor(store, twCtl)

	c := consumer.New(log, consumer.Config{
		Stream:   "event_stream",
		Group:    "group1",
		Consumer: "consumer1",
		Count:    10,
		Block:    10 * time.Millisecond,
	}, store, twCtl, handlers, ruleReg, processor, zerolog.New(io.Discard))

	return &testRig{log: log, store: store, twCtl: twCtl, c: c}
}

func appendEvent(t *testing.T, log *streamlog.MemoryLog, name string, props map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(props)
	if err != nil {
		t.Fatalf("marshal props: %v", err)
	}
	if _, err := log.Append(context.Background(), "event_stream", map[string]string{
		"name":             name,
		"event_properties": string(raw),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestConsumerScamMessageScenario(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	if err := rig.log.CreateGroup(ctx, "event_stream", "group1"); err != nil {
		t.Fatalf("create group: %v", err)
	}

	appendEvent(t, rig.log, "scam_message_flagged", map[string]interface{}{"user_id": "u1"})
	appendEvent(t, rig.log, "scam_message_flagged", map[string]interface{}{"user_id": "u1"})

	drainOnce(t, rig, 2)

	agg, err := rig.store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if agg.AccessFlags.CanMessage {
		t.Fatalf("expected can_message=false after 2 scam flags")
	}
	if !agg.AccessFlags.CanPurchase {
		t.Fatalf("expected can_purchase untouched")
	}
}

func TestConsumerZipCodeBoundaryScenario(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	if err := rig.log.CreateGroup(ctx, "event_stream", "group1"); err != nil {
		t.Fatalf("create group: %v", err)
	}

	cards := []struct{ id, zip string }{{"c1", "10001"}, {"c2", "10002"}, {"c3", "10003"}}
	for _, c := range cards {
		appendEvent(t, rig.log, "credit_card_added", map[string]interface{}{
			"user_id": "u2", "card_id": c.id, "zip_code": c.zip,
		})
	}

	drainOnce(t, rig, len(cards))

	agg, err := rig.store.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if agg.AccessFlags.CanPurchase {
		t.Fatalf("expected can_purchase=false at 3/3 unique zips")
	}
}

func TestConsumerUnknownEventNameDropsEntry(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	if err := rig.log.CreateGroup(ctx, "event_stream", "group1"); err != nil {
		t.Fatalf("create group: %v", err)
	}

	appendEvent(t, rig.log, "not_a_real_event", map[string]interface{}{"user_id": "u9"})
	drainOnce(t, rig, 1)

	if rig.log.PendingCount("event_stream") != 0 {
		t.Fatalf("expected unknown event to be acknowledged (dropped), pending=%d", rig.log.PendingCount("event_stream"))
	}
}

func TestConsumerIdempotentCreditCardAdd(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	if err := rig.log.CreateGroup(ctx, "event_stream", "group1"); err != nil {
		t.Fatalf("create group: %v", err)
	}

	for i := 0; i < 2; i++ {
		appendEvent(t, rig.log, "credit_card_added", map[string]interface{}{
			"user_id": "u4", "card_id": "c1", "zip_code": "10001",
		})
	}
	drainOnce(t, rig, 2)

	agg, err := rig.store.Get(ctx, "u4")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if agg.TotalCreditCards != 1 {
		t.Fatalf("expected total_credit_cards=1, got %d", agg.TotalCreditCards)
	}
	if agg.UniqueZipCodes.Len() != 1 {
		t.Fatalf("expected 1 unique zip, got %d", agg.UniqueZipCodes.Len())
	}
}

// drainOnce runs Start in the background long enough to pick up and
// acknowledge every already-appended entry, then cancels it. expectedCount
// is unused beyond documenting intent at call sites.
func drainOnce(t *testing.T, rig *testRig, expectedCount int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- rig.c.Start(ctx) }()

	// Give the loop a chance to perform at least one ReadGroup before we
	// start polling for drain-to-zero, so pending genuinely reflects
	// in-flight delivered-but-unacknowledged entries rather than entries
	// not yet read at all.
	time.Sleep(30 * time.Millisecond)

	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		if rig.log.PendingCount("event_stream") == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}
