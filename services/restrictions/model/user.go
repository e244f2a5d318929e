package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StringSet is a set of strings that marshals to a sorted JSON array
// instead of an object, so the persisted aggregate reads naturally.
type StringSet map[string]struct{}

// NewStringSet returns an empty set.
func NewStringSet() StringSet {
	return make(StringSet)
}

// Add inserts v into the set. No-op if already present.
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Len reports the number of distinct members.
func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return json.Marshal(out)
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	set := make(StringSet, len(arr))
	for _, v := range arr {
		set[v] = struct{}{}
	}
	*s = set
	return nil
}

// AccessFlags are the two boolean feature gates tracked per user.
// Both start true and are monotone downward only under normal operation.
type AccessFlags struct {
	CanMessage  bool `json:"can_message"`
	CanPurchase bool `json:"can_purchase"`
}

// UserAggregate is the whole persisted object for one user.
type UserAggregate struct {
	UserID            string            `json:"user_id"`
	ScamMessageFlags  int               `json:"scam_message_flags"`
	CreditCards       map[string]string `json:"credit_cards"`
	TotalCreditCards  int               `json:"total_credit_cards"`
	UniqueZipCodes    StringSet         `json:"unique_zip_codes"`
	TotalSpend        float64           `json:"total_spend"`
	TotalChargebacks  float64           `json:"total_chargebacks"`
	AccessFlags       AccessFlags       `json:"access_flags"`
}

// NewUserAggregate returns the default aggregate for a brand new user:
// all counters zero, both access flags true.
func NewUserAggregate(userID string) *UserAggregate {
	return &UserAggregate{
		UserID:         userID,
		CreditCards:    make(map[string]string),
		UniqueZipCodes: NewStringSet(),
		AccessFlags:    AccessFlags{CanMessage: true, CanPurchase: true},
	}
}

// String renders the aggregate for debug logging only — never on the
// request/consume hot path.
func (u *UserAggregate) String() string {
	return fmt.Sprintf(
		"user_id=%s scam_message_flags=%d total_credit_cards=%d unique_zip_codes=%d total_spend=%.2f total_chargebacks=%.2f can_message=%t can_purchase=%t",
		u.UserID, u.ScamMessageFlags, u.TotalCreditCards, u.UniqueZipCodes.Len(),
		u.TotalSpend, u.TotalChargebacks, u.AccessFlags.CanMessage, u.AccessFlags.CanPurchase,
	)
}
