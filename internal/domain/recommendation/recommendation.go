// Package recommendation models the results handed to presentation code.
package recommendation

import (
	"math"
	"slices"

	"github.com/okian/cardwise/internal/domain/payload"
)

// DefaultMatchReasons are shown when the service gives no reasons of its own.
func DefaultMatchReasons() []string {
	return []string{
		"Aligns with your spending patterns",
		"Matches your reward preferences",
		"Fits within your fee tolerance",
	}
}

// Recommendation is one suggested card. Fee fields are display strings
// and are never parsed.
type Recommendation struct {
	CardName          string   `json:"card_name" yaml:"card_name"`
	Issuer            string   `json:"issuer" yaml:"issuer"`
	AnnualFee         string   `json:"annual_fee" yaml:"annual_fee"`
	JoiningFee        string   `json:"joining_fee" yaml:"joining_fee"`
	Rewards           string   `json:"rewards" yaml:"rewards"`
	PremiumServices   string   `json:"premium_services,omitempty" yaml:"premium_services,omitempty"`
	TravelBenefits    string   `json:"travel_benefits,omitempty" yaml:"travel_benefits,omitempty"`
	LifestyleBenefits string   `json:"lifestyle_benefits,omitempty" yaml:"lifestyle_benefits,omitempty"`
	MatchPercentage   float64  `json:"match_percentage" yaml:"match_percentage"`
	MatchReasons      []string `json:"match_reasons" yaml:"match_reasons"`
}

// Normalize clamps the match percentage and fills in default reasons.
func (r Recommendation) Normalize() Recommendation {
	r.MatchPercentage = clamp(r.MatchPercentage, 0, 100)
	if len(r.MatchReasons) == 0 {
		r.MatchReasons = DefaultMatchReasons()
	} else {
		r.MatchReasons = slices.Clone(r.MatchReasons)
	}
	return r
}

// UserProfile summarises the submitted profile next to the results.
type UserProfile struct {
	TopCategories  []payload.CategoryAmount `json:"top_categories" yaml:"top_categories"`
	LifestyleScore int                      `json:"lifestyle_score" yaml:"lifestyle_score"`
}

// Results is the hand-off structure for presentation. Order of
// Recommendations is best match first and must be preserved.
type Results struct {
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	UserProfile     UserProfile      `json:"user_profile" yaml:"user_profile"`
}

// NewResults normalizes recs in order and attaches the profile summary of p.
func NewResults(recs []Recommendation, p payload.Payload) Results {
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = r.Normalize()
	}
	top := slices.Clone(p.TopCategories)
	if top == nil {
		top = []payload.CategoryAmount{}
	}
	return Results{
		Recommendations: out,
		UserProfile: UserProfile{
			TopCategories:  top,
			LifestyleScore: LifestyleScore(p),
		},
	}
}

// LifestyleScore is round(domestic*10 + international*20 + maxFee/1000)
// clamped to [0, 100].
func LifestyleScore(p payload.Payload) int {
	raw := p.TravelFrequency.Domestic*10 + p.TravelFrequency.International*20 + p.MaxAnnualFee/1000
	return int(clamp(math.Round(raw), 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
