// Package profile holds the financial profile draft collected by the wizard:
// a closed schema of topic sections, typed field paths into it, and a
// copy-on-write store owning the live draft.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Financial is the income and debt section.
type Financial struct {
	AnnualIncome Number      `json:"annual_income"`
	MonthlyDebt  Number      `json:"monthly_debt"`
	CreditScore  CreditScore `json:"credit_score"`
}

// Spending holds the monthly amount per Category.
type Spending [numCategories]Number

// Amount returns the amount recorded for c.
func (s Spending) Amount(c Category) Number { return s[c] }

// MarshalJSON encodes spending as an object keyed by category in declared order.
func (s Spending) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories() {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, _ := s[c].MarshalJSON()
		fmt.Fprintf(&buf, "%q:%s", c.Key(), v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rejects unknown categories.
func (s *Spending) UnmarshalJSON(b []byte) error {
	var raw map[string]Number
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Spending
	for k, v := range raw {
		c, ok := categoryByKey(k)
		if !ok {
			return fmt.Errorf("%w: spending.%s", ErrUnknownPath, k)
		}
		out[c] = v
	}
	*s = out
	return nil
}

// Behavior is the transaction behavior section.
type Behavior struct {
	WeeklyTransactions      Number       `json:"weekly_transactions"`
	AverageTransactionValue Number       `json:"average_transaction_value"`
	PaymentHabit            PaymentHabit `json:"payment_habit"`
}

// Lifestyle is the travel and lifestyle section.
type Lifestyle struct {
	DomesticTrips      Number `json:"domestic_trips"`
	InternationalTrips Number `json:"international_trips"`
	Accommodation      string `json:"accommodation"`
}

// Rankings holds the preference rank per Reward.
type Rankings [numRewards]Number

// Rank returns the rank recorded for r.
func (r Rankings) Rank(rw Reward) Number { return r[rw] }

// MarshalJSON encodes rankings as an object keyed by reward in declared order.
func (r Rankings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rw := range Rewards() {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, _ := r[rw].MarshalJSON()
		fmt.Fprintf(&buf, "%q:%s", rw.Key(), v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rejects unknown rewards.
func (r *Rankings) UnmarshalJSON(b []byte) error {
	var raw map[string]Number
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Rankings
	for k, v := range raw {
		rw, ok := rewardByKey(k)
		if !ok {
			return fmt.Errorf("%w: rewards.%s", ErrUnknownPath, k)
		}
		out[rw] = v
	}
	*r = out
	return nil
}

// Fees is the fee tolerance section.
type Fees struct {
	MaxAnnualFee       Number           `json:"max_annual_fee"`
	JustifyingFeatures string           `json:"justifying_features"`
	PremiumServices    []PremiumService `json:"premium_services"`
}

func (f Fees) clone() Fees {
	f.PremiumServices = slices.Clone(f.PremiumServices)
	return f
}

// Draft is an immutable snapshot of the profile. Updates produce a new Draft
// that shares every section except the one that changed. The zero Draft is
// the blank profile.
type Draft struct {
	financial *Financial
	spending  *Spending
	behavior  *Behavior
	lifestyle *Lifestyle
	rewards   *Rankings
	fees      *Fees
}

// Shared read-only blanks backing the zero Draft. Never written to.
var ( //nolint:gochecknoglobals // immutable blanks
	blankFinancial Financial
	blankSpending  Spending
	blankBehavior  Behavior
	blankLifestyle Lifestyle
	blankRewards   Rankings
	blankFees      Fees
)

// New returns a blank draft with every section allocated.
func New() Draft {
	return Draft{
		financial: &Financial{},
		spending:  &Spending{},
		behavior:  &Behavior{},
		lifestyle: &Lifestyle{},
		rewards:   &Rankings{},
		fees:      &Fees{},
	}
}

// Sample returns the prefilled demo profile the intake form opens with.
func Sample() Draft {
	var sp Spending
	sp[Groceries] = Num(500)
	sp[Dining] = Num(300)
	sp[Travel] = Num(200)
	sp[Shopping] = Num(400)
	sp[Gas] = Num(150)
	sp[Utilities] = Num(250)
	sp[Entertainment] = Num(200)

	var rk Rankings
	rk[Cashback] = Num(1)
	rk[TravelMiles] = Num(3)
	rk[ShoppingDiscounts] = Num(2)
	rk[DiningBenefits] = Num(4)
	rk[EntertainmentPerks] = Num(5)

	return Draft{
		financial: &Financial{AnnualIncome: Num(75000), MonthlyDebt: Num(0), CreditScore: CreditUnknown},
		spending:  &sp,
		behavior: &Behavior{
			WeeklyTransactions:      Num(15),
			AverageTransactionValue: Num(200),
			PaymentHabit:            PayFullBalance,
		},
		lifestyle: &Lifestyle{DomesticTrips: Num(2), InternationalTrips: Num(1)},
		rewards:   &rk,
		fees:      &Fees{MaxAnnualFee: Num(5000), PremiumServices: []PremiumService{}},
	}
}

func (d Draft) fin() *Financial {
	if d.financial == nil {
		return &blankFinancial
	}
	return d.financial
}

func (d Draft) spend() *Spending {
	if d.spending == nil {
		return &blankSpending
	}
	return d.spending
}

func (d Draft) behav() *Behavior {
	if d.behavior == nil {
		return &blankBehavior
	}
	return d.behavior
}

func (d Draft) life() *Lifestyle {
	if d.lifestyle == nil {
		return &blankLifestyle
	}
	return d.lifestyle
}

func (d Draft) rank() *Rankings {
	if d.rewards == nil {
		return &blankRewards
	}
	return d.rewards
}

func (d Draft) fee() *Fees {
	if d.fees == nil {
		return &blankFees
	}
	return d.fees
}

// Financial returns a copy of the income and debt section.
func (d Draft) Financial() Financial { return *d.fin() }

// Spending returns a copy of the spending section.
func (d Draft) Spending() Spending { return *d.spend() }

// Behavior returns a copy of the transaction behavior section.
func (d Draft) Behavior() Behavior { return *d.behav() }

// Lifestyle returns a copy of the travel and lifestyle section.
func (d Draft) Lifestyle() Lifestyle { return *d.life() }

// Rewards returns a copy of the reward ranking section.
func (d Draft) Rewards() Rankings { return *d.rank() }

// Fees returns a copy of the fee tolerance section.
func (d Draft) Fees() Fees { return d.fee().clone() }

// Equal reports whether both drafts hold the same values.
func (d Draft) Equal(o Draft) bool {
	return d.Financial() == o.Financial() &&
		d.Spending() == o.Spending() &&
		d.Behavior() == o.Behavior() &&
		d.Lifestyle() == o.Lifestyle() &&
		d.Rewards() == o.Rewards() &&
		feesEqual(d.fee(), o.fee())
}

func feesEqual(a, b *Fees) bool {
	return a.MaxAnnualFee == b.MaxAnnualFee &&
		a.JustifyingFeatures == b.JustifyingFeatures &&
		slices.Equal(a.PremiumServices, b.PremiumServices)
}

type draftJSON struct {
	Financial Financial `json:"financial"`
	Spending  Spending  `json:"spending"`
	Behavior  Behavior  `json:"behavior"`
	Lifestyle Lifestyle `json:"lifestyle"`
	Rewards   Rankings  `json:"rewards"`
	Fees      Fees      `json:"fees"`
}

// MarshalJSON encodes the draft as nested sections.
func (d Draft) MarshalJSON() ([]byte, error) {
	fees := d.Fees()
	if fees.PremiumServices == nil {
		fees.PremiumServices = []PremiumService{}
	}
	return json.Marshal(draftJSON{
		Financial: d.Financial(),
		Spending:  d.Spending(),
		Behavior:  d.Behavior(),
		Lifestyle: d.Lifestyle(),
		Rewards:   d.Rewards(),
		Fees:      fees,
	})
}

// UnmarshalJSON decodes nested sections and rejects unknown keys.
func (d *Draft) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var in draftJSON
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	fees := in.Fees.clone()
	*d = Draft{
		financial: &in.Financial,
		spending:  &in.Spending,
		behavior:  &in.Behavior,
		lifestyle: &in.Lifestyle,
		rewards:   &in.Rewards,
		fees:      &fees,
	}
	return nil
}

func categoryByKey(k string) (Category, bool) {
	for _, c := range Categories() {
		if c.Key() == k {
			return c, true
		}
	}
	return 0, false
}

func rewardByKey(k string) (Reward, bool) {
	for _, r := range Rewards() {
		if r.Key() == k {
			return r, true
		}
	}
	return 0, false
}
