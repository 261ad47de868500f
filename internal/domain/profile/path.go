package profile

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Kind tells presentation code how to render and parse a field.
type Kind string

const (
	KindNumber  Kind = "number"
	KindEnum    Kind = "enum"
	KindText    Kind = "text"
	KindEnumSet Kind = "enum_set"
)

// Field addresses one leaf of the draft with a static type. The set of
// fields is closed: only the package-level values below exist.
type Field[T any] struct {
	path  string
	kind  Kind
	get   func(Draft) T
	set   func(Draft, T) Draft
	clone func(T) T
}

// Path returns the dotted path of the field, e.g. "financial.annual_income".
func (f Field[T]) Path() string { return f.path }

// Kind returns the field kind.
func (f Field[T]) Kind() Kind { return f.kind }

// Get reads the field from d.
func (f Field[T]) Get(d Draft) T {
	v := f.get(d)
	if f.clone != nil {
		v = f.clone(v)
	}
	return v
}

// With returns a copy of d with the field set to v. d is left untouched.
func (f Field[T]) With(d Draft, v T) Draft {
	if f.clone != nil {
		v = f.clone(v)
	}
	return f.set(d, v)
}

func (f Field[T]) withJSON(d Draft, raw json.RawMessage) (Draft, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return d, fmt.Errorf("%w: %s: %w", ErrInvalidValue, f.path, err)
	}
	return f.With(d, v), nil
}

func (f Field[T]) value(d Draft) any { return f.Get(d) }

// AnyField is a Field with its type erased, as returned by Lookup.
type AnyField interface {
	Path() string
	Kind() Kind
	withJSON(d Draft, raw json.RawMessage) (Draft, error)
	value(d Draft) any
}

// section binds a draft section to its path prefix.
type section[S any] struct {
	prefix string
	load   func(Draft) *S
	store  func(*Draft, *S)
}

func leaf[S, T any](sec section[S], name string, kind Kind, ptr func(*S) *T) Field[T] {
	return Field[T]{
		path: sec.prefix + "." + name,
		kind: kind,
		get:  func(d Draft) T { return *ptr(sec.load(d)) },
		set: func(d Draft, v T) Draft {
			s := *sec.load(d)
			*ptr(&s) = v
			sec.store(&d, &s)
			return d
		},
	}
}

var ( //nolint:gochecknoglobals // closed schema
	financialSec = section[Financial]{"financial", Draft.fin, func(d *Draft, s *Financial) { d.financial = s }}
	spendingSec  = section[Spending]{"spending", Draft.spend, func(d *Draft, s *Spending) { d.spending = s }}
	behaviorSec  = section[Behavior]{"behavior", Draft.behav, func(d *Draft, s *Behavior) { d.behavior = s }}
	lifestyleSec = section[Lifestyle]{"lifestyle", Draft.life, func(d *Draft, s *Lifestyle) { d.lifestyle = s }}
	rewardsSec   = section[Rankings]{"rewards", Draft.rank, func(d *Draft, s *Rankings) { d.rewards = s }}
	feesSec      = section[Fees]{"fees", Draft.fee, func(d *Draft, s *Fees) { d.fees = s }}
)

// Known fields.
var ( //nolint:gochecknoglobals // closed schema
	AnnualIncome = leaf(financialSec, "annual_income", KindNumber, func(s *Financial) *Number { return &s.AnnualIncome })
	MonthlyDebt  = leaf(financialSec, "monthly_debt", KindNumber, func(s *Financial) *Number { return &s.MonthlyDebt })
	CreditBucket = leaf(financialSec, "credit_score", KindEnum, func(s *Financial) *CreditScore { return &s.CreditScore })

	WeeklyTransactions      = leaf(behaviorSec, "weekly_transactions", KindNumber, func(s *Behavior) *Number { return &s.WeeklyTransactions })
	AverageTransactionValue = leaf(behaviorSec, "average_transaction_value", KindNumber, func(s *Behavior) *Number { return &s.AverageTransactionValue })
	Habit                   = leaf(behaviorSec, "payment_habit", KindEnum, func(s *Behavior) *PaymentHabit { return &s.PaymentHabit })

	DomesticTrips      = leaf(lifestyleSec, "domestic_trips", KindNumber, func(s *Lifestyle) *Number { return &s.DomesticTrips })
	InternationalTrips = leaf(lifestyleSec, "international_trips", KindNumber, func(s *Lifestyle) *Number { return &s.InternationalTrips })
	Accommodation      = leaf(lifestyleSec, "accommodation", KindText, func(s *Lifestyle) *string { return &s.Accommodation })

	MaxAnnualFee       = leaf(feesSec, "max_annual_fee", KindNumber, func(s *Fees) *Number { return &s.MaxAnnualFee })
	JustifyingFeatures = leaf(feesSec, "justifying_features", KindText, func(s *Fees) *string { return &s.JustifyingFeatures })
	Services           = withClone(leaf(feesSec, "premium_services", KindEnumSet,
		func(s *Fees) *[]PremiumService { return &s.PremiumServices }), slices.Clone[[]PremiumService])

	spendingFields = func() (out [numCategories]Field[Number]) {
		for _, c := range Categories() {
			out[c] = leaf(spendingSec, c.Key(), KindNumber, func(s *Spending) *Number { return &s[c] })
		}
		return out
	}()

	rewardFields = func() (out [numRewards]Field[Number]) {
		for _, r := range Rewards() {
			out[r] = leaf(rewardsSec, r.Key(), KindNumber, func(s *Rankings) *Number { return &s[r] })
		}
		return out
	}()
)

func withClone[T any](f Field[T], clone func(T) T) Field[T] {
	f.clone = clone
	return f
}

// SpendingOn addresses the monthly amount for category c.
func SpendingOn(c Category) Field[Number] { return spendingFields[c] }

// RankOf addresses the preference rank for reward r.
func RankOf(r Reward) Field[Number] { return rewardFields[r] }

// All returns every field in step and declaration order.
func All() []AnyField {
	out := []AnyField{AnnualIncome, MonthlyDebt, CreditBucket}
	for _, c := range Categories() {
		out = append(out, SpendingOn(c))
	}
	out = append(out, WeeklyTransactions, AverageTransactionValue, Habit,
		DomesticTrips, InternationalTrips, Accommodation)
	for _, r := range Rewards() {
		out = append(out, RankOf(r))
	}
	return append(out, MaxAnnualFee, JustifyingFeatures, Services)
}

var byPath = func() map[string]AnyField { //nolint:gochecknoglobals // closed schema index
	m := make(map[string]AnyField)
	for _, f := range All() {
		m[f.Path()] = f
	}
	return m
}()

// Lookup resolves a dotted path to its field.
func Lookup(path string) (AnyField, error) {
	f, ok := byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	return f, nil
}

// Value reads the field at path from d.
func Value(d Draft, path string) (any, error) {
	f, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	return f.value(d), nil
}

// WithJSON returns a copy of d with the field at path decoded from raw.
func WithJSON(d Draft, path string, raw json.RawMessage) (Draft, error) {
	f, err := Lookup(path)
	if err != nil {
		return d, err
	}
	return f.withJSON(d, raw)
}
