package eventhandler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/eventhandler"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

type fakeStore struct {
	users map[string]*model.UserAggregate
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]*model.UserAggregate{}} }

func (f *fakeStore) Get(ctx context.Context, userID string) (*model.UserAggregate, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeStore) Create(ctx context.Context, userID string) (*model.UserAggregate, error) {
	u := model.NewUserAggregate(userID)
	f.users[userID] = u
	return u, nil
}
func (f *fakeStore) Save(ctx context.Context, agg *model.UserAggregate) error {
	f.users[agg.UserID] = agg
	return nil
}
func (f *fakeStore) Delete(ctx context.Context, userID string) error {
	delete(f.users, userID)
	return nil
}
func (f *fakeStore) Count(ctx context.Context) (int, error) { return len(f.users), nil }
func (f *fakeStore) Clear(ctx context.Context) error        { f.users = map[string]*model.UserAggregate{}; return nil }

func TestCreditCardAddedIsIdempotent(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewCreditCardAddedHandler(store)
	agg := model.NewUserAggregate("u4")

	event := model.Event{
		Name: "credit_card_added",
		EventProperties: map[string]interface{}{
			"user_id":  "u4",
			"card_id":  "c1",
			"zip_code": "10001",
		},
	}

	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("second handle: %v", err)
	}

	if agg.TotalCreditCards != 1 {
		t.Fatalf("expected total_credit_cards=1, got %d", agg.TotalCreditCards)
	}
	if agg.UniqueZipCodes.Len() != 1 {
		t.Fatalf("expected 1 unique zip, got %d", agg.UniqueZipCodes.Len())
	}
}

func TestCreditCardAddedMissingPropertiesFails(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewCreditCardAddedHandler(store)
	agg := model.NewUserAggregate("u1")

	event := model.Event{
		Name:            "credit_card_added",
		EventProperties: map[string]interface{}{"user_id": "u1"},
	}

	err := h.Handle(context.Background(), event, agg)
	if !errors.Is(err, model.ErrBadEventProperties) {
		t.Fatalf("expected ErrBadEventProperties, got %v", err)
	}
}

func TestScamMessageFlaggedIncrements(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewScamMessageFlaggedHandler(store)
	agg := model.NewUserAggregate("u1")

	event := model.Event{Name: "scam_message_flagged", EventProperties: map[string]interface{}{"user_id": "u1"}}

	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if agg.ScamMessageFlags != 2 {
		t.Fatalf("expected 2 flags, got %d", agg.ScamMessageFlags)
	}
}

func TestChargebackOccurredRequiresAmount(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewChargebackOccurredHandler(store)
	agg := model.NewUserAggregate("u1")

	event := model.Event{Name: "chargeback_occurred", EventProperties: map[string]interface{}{"user_id": "u1"}}
	err := h.Handle(context.Background(), event, agg)
	if !errors.Is(err, model.ErrBadEventProperties) {
		t.Fatalf("expected ErrBadEventProperties, got %v", err)
	}
}

func TestChargebackOccurredAccumulates(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewChargebackOccurredHandler(store)
	agg := model.NewUserAggregate("u1")

	event := model.Event{
		Name: "chargeback_occurred",
		EventProperties: map[string]interface{}{
			"user_id": "u1",
			"amount":  15.0,
		},
	}
	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if agg.TotalChargebacks != 15.0 {
		t.Fatalf("expected total_chargebacks=15, got %f", agg.TotalChargebacks)
	}
}

func TestPurchaseMadeAccumulates(t *testing.T) {
	store := newFakeStore()
	h := eventhandler.NewPurchaseMadeHandler(store)
	agg := model.NewUserAggregate("u1")

	event := model.Event{
		Name: "purchase_made",
		EventProperties: map[string]interface{}{
			"user_id": "u1",
			"amount":  100.0,
		},
	}
	if err := h.Handle(context.Background(), event, agg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if agg.TotalSpend != 100.0 {
		t.Fatalf("expected total_spend=100, got %f", agg.TotalSpend)
	}
}

func TestRegistryMapsEventsToHandlersAndRules(t *testing.T) {
	store := newFakeStore()
	reg := eventhandler.NewRegistry(store)

	if _, ok := reg.Get("credit_card_added"); !ok {
		t.Fatalf("expected handler for credit_card_added")
	}
	if _, ok := reg.Get("not_an_event"); ok {
		t.Fatalf("expected no handler for unknown event")
	}

	names, ok := reg.RulesFor("credit_card_added")
	if !ok || len(names) != 1 || names[0] != "unique_zip_code_rule" {
		t.Fatalf("expected [unique_zip_code_rule], got %v ok=%v", names, ok)
	}

	names, ok = reg.RulesFor("purchase_made")
	if !ok || len(names) != 0 {
		t.Fatalf("expected no rules for purchase_made, got %v ok=%v", names, ok)
	}

	if _, ok := reg.RulesFor("not_an_event"); ok {
		t.Fatalf("expected ok=false for unknown event")
	}
}
