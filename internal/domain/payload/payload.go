// Package payload flattens a profile draft into the request body the
// recommendation service expects.
package payload

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/okian/cardwise/internal/domain/profile"
)

// DefaultTopN is the number of spending categories highlighted by default.
const DefaultTopN = 3

// DefaultCreditScore is used for "unknown" and unrecognised buckets.
const DefaultCreditScore = 650

var creditMidpoints = map[profile.CreditScore]int{ //nolint:gochecknoglobals // lookup table
	profile.CreditExcellent: 800,
	profile.CreditGood:      700,
	profile.CreditFair:      650,
	profile.CreditPoor:      550,
	profile.CreditUnknown:   DefaultCreditScore,
}

// CategoryAmount is one entry of the top spending summary.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TravelFrequency is the yearly trip count.
type TravelFrequency struct {
	Domestic      float64 `json:"domestic"`
	International float64 `json:"international"`
}

// SpendingCategories maps category keys to monthly amounts and encodes in
// declared category order.
type SpendingCategories []CategoryAmount

// MarshalJSON encodes the list as an object preserving order.
func (s SpendingCategories) MarshalJSON() ([]byte, error) {
	return orderedObject(len(s), func(i int) (string, float64) { return s[i].Category, s[i].Amount })
}

// RewardPreferences maps service reward keys to ranks, in declared order.
type RewardPreferences []RewardRank

// RewardRank is a single reward weight.
type RewardRank struct {
	Reward string
	Rank   float64
}

// MarshalJSON encodes the list as an object preserving order.
func (r RewardPreferences) MarshalJSON() ([]byte, error) {
	return orderedObject(len(r), func(i int) (string, float64) { return r[i].Reward, r[i].Rank })
}

// Payload is the flat request body.
type Payload struct {
	Income             float64            `json:"income"`
	CreditScore        int                `json:"creditScore"`
	MaxAnnualFee       float64            `json:"maxAnnualFee"`
	SpendingCategories SpendingCategories `json:"spendingCategories"`
	TopCategories      []CategoryAmount   `json:"topCategories"`
	TravelFrequency    TravelFrequency    `json:"travelFrequency"`
	RewardPreferences  RewardPreferences  `json:"rewardPreferences"`
	PremiumServices    []string           `json:"premiumServices"`
}

// Option tunes Format.
type Option func(*options)

type options struct {
	topN int
}

// WithTopN sets how many categories TopCategories holds. Non-positive values
// keep the default.
func WithTopN(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.topN = n
		}
	}
}

// Format flattens d. It is pure and deterministic.
func Format(d profile.Draft, opts ...Option) Payload {
	o := options{topN: DefaultTopN}
	for _, opt := range opts {
		opt(&o)
	}

	sp := d.Spending()
	spending := make(SpendingCategories, 0, len(profile.Categories()))
	for _, c := range profile.Categories() {
		spending = append(spending, CategoryAmount{Category: c.Key(), Amount: sp.Amount(c).Float()})
	}

	rk := d.Rewards()
	rewards := make(RewardPreferences, 0, len(profile.Rewards()))
	for _, r := range profile.Rewards() {
		rewards = append(rewards, RewardRank{Reward: r.WireKey(), Rank: rk.Rank(r).Float()})
	}

	fees := d.Fees()
	services := make([]string, 0, len(fees.PremiumServices))
	for _, s := range fees.PremiumServices {
		services = append(services, string(s))
	}

	life := d.Lifestyle()
	fin := d.Financial()
	return Payload{
		Income:             fin.AnnualIncome.Float(),
		CreditScore:        CreditMidpoint(fin.CreditScore),
		MaxAnnualFee:       fees.MaxAnnualFee.Float(),
		SpendingCategories: spending,
		TopCategories:      TopCategories(spending, o.topN),
		TravelFrequency: TravelFrequency{
			Domestic:      life.DomesticTrips.Float(),
			International: life.InternationalTrips.Float(),
		},
		RewardPreferences: rewards,
		PremiumServices:   services,
	}
}

// CreditMidpoint maps a bucket to its representative score.
func CreditMidpoint(c profile.CreditScore) int {
	if v, ok := creditMidpoints[c]; ok {
		return v
	}
	return DefaultCreditScore
}

// TopCategories returns the n largest amounts, descending. Ties keep the
// input order.
func TopCategories(all []CategoryAmount, n int) []CategoryAmount {
	ranked := make([]CategoryAmount, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Encode returns the canonical JSON body for p.
func Encode(p Payload) ([]byte, error) {
	if p.PremiumServices == nil {
		p.PremiumServices = []string{}
	}
	if p.TopCategories == nil {
		p.TopCategories = []CategoryAmount{}
	}
	return json.Marshal(p)
}

func orderedObject(n int, at func(int) (string, float64)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		k, v := at(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
