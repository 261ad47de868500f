// Package validation checks one step of a profile draft at a time.
// Rules are pure: the same step and draft always yield the same list.
package validation

import (
	"fmt"
	"strings"

	"github.com/okian/cardwise/internal/domain/profile"
)

// Violations is the per-step list of user-facing messages. Empty means valid.
type Violations []string

// OK reports whether there are no violations.
func (v Violations) OK() bool { return len(v) == 0 }

func (v Violations) Error() string { return strings.Join(v, "; ") }

type rule func(d profile.Draft) Violations

var rules = map[int]rule{ //nolint:gochecknoglobals // fixed rule table
	profile.StepBasicInfo:   basicInfo,
	profile.StepSpending:    spending,
	profile.StepBehavior:    behavior,
	profile.StepLifestyle:   lifestyle,
	profile.StepPreferences: preferences,
}

// Validate returns the violations of step for d.
func Validate(step int, d profile.Draft) Violations {
	r, ok := rules[step]
	if !ok {
		return Violations{fmt.Sprintf("Unknown step %d", step)}
	}
	return r(d)
}

func basicInfo(d profile.Draft) Violations {
	var out Violations
	f := d.Financial()
	if !f.AnnualIncome.Positive() {
		out = append(out, "Please enter a valid annual income")
	}
	if f.CreditScore == "" {
		out = append(out, "Please select your credit score range")
	}
	if f.MonthlyDebt.Negative() {
		out = append(out, "Monthly debt cannot be negative")
	}
	return out
}

func spending(d profile.Draft) Violations {
	sp := d.Spending()
	var missing []string
	for _, c := range profile.Categories() {
		if !sp.Amount(c).Positive() {
			missing = append(missing, c.Label())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return Violations{"Please enter spending amounts for: " + strings.Join(missing, ", ")}
}

func behavior(d profile.Draft) Violations {
	var out Violations
	b := d.Behavior()
	if b.WeeklyTransactions.Negative() {
		out = append(out, "Weekly transactions cannot be negative")
	}
	if b.AverageTransactionValue.Negative() {
		out = append(out, "Average transaction value cannot be negative")
	}
	if b.PaymentHabit != "" && !b.PaymentHabit.Known() {
		out = append(out, "Please choose a recognised payment habit")
	}
	return out
}

func lifestyle(d profile.Draft) Violations {
	var out Violations
	l := d.Lifestyle()
	if l.DomesticTrips.Negative() {
		out = append(out, "Domestic trips cannot be negative")
	}
	if l.InternationalTrips.Negative() {
		out = append(out, "International trips cannot be negative")
	}
	return out
}

func preferences(d profile.Draft) Violations {
	var out Violations

	rk := d.Rewards()
	var unranked []string
	for _, r := range profile.Rewards() {
		if !rk.Rank(r).Positive() {
			unranked = append(unranked, r.Label())
		}
	}
	if len(unranked) > 0 {
		out = append(out, "Please rank the following reward preferences: "+strings.Join(unranked, ", "))
	}

	fees := d.Fees()
	switch {
	case !fees.MaxAnnualFee.Set:
		out = append(out, "Please enter the maximum annual fee you're willing to pay")
	case fees.MaxAnnualFee.Negative():
		out = append(out, "Annual fee cannot be negative")
	}

	var unknown []string
	for _, s := range fees.PremiumServices {
		if !s.Known() {
			unknown = append(unknown, string(s))
		}
	}
	if len(unknown) > 0 {
		out = append(out, "Unknown premium services: "+strings.Join(unknown, ", "))
	}
	return out
}
