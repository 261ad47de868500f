package loadtest

import (
	"crypto/rand"
	"math/big"

	"github.com/okian/cardwise/internal/domain/profile"
)

// Ranges for generated profiles.
const (
	incomeMin        = 20_000
	incomeRange      = 200_000
	debtRange        = 3_000
	spendMin         = 25
	spendRange       = 1_500
	weeklyMin        = 1
	weeklyRange      = 40
	avgValueMin      = 50
	avgValueRange    = 500
	domesticRange    = 10
	internationalMax = 5
	feeRange         = 10_000
	feeStep          = 500
)

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func pick[T any](xs []T) T { return xs[randomInt(len(xs))] }

// Generate returns n complete profiles that pass every step. Values are
// spread over realistic ranges starting from the sample profile.
func Generate(n int) []profile.Draft {
	out := make([]profile.Draft, n)
	for i := range out {
		out[i] = generateOne()
	}
	return out
}

func generateOne() profile.Draft {
	d := profile.Sample()

	d = profile.AnnualIncome.With(d, profile.Num(float64(incomeMin+randomInt(incomeRange))))
	d = profile.MonthlyDebt.With(d, profile.Num(float64(randomInt(debtRange))))
	d = profile.CreditBucket.With(d, pick(profile.CreditScores()))

	for _, c := range profile.Categories() {
		d = profile.SpendingOn(c).With(d, profile.Num(float64(spendMin+randomInt(spendRange))))
	}

	d = profile.WeeklyTransactions.With(d, profile.Num(float64(weeklyMin+randomInt(weeklyRange))))
	d = profile.AverageTransactionValue.With(d, profile.Num(float64(avgValueMin+randomInt(avgValueRange))))
	d = profile.Habit.With(d, pick(profile.PaymentHabits()))

	d = profile.DomesticTrips.With(d, profile.Num(float64(randomInt(domesticRange+1))))
	d = profile.InternationalTrips.With(d, profile.Num(float64(randomInt(internationalMax+1))))

	for i, r := range shuffledRewards() {
		d = profile.RankOf(r).With(d, profile.Num(float64(i+1)))
	}

	d = profile.MaxAnnualFee.With(d, profile.Num(float64(randomInt(feeRange/feeStep+1)*feeStep)))
	var services []profile.PremiumService
	for _, s := range profile.PremiumServices() {
		if randomInt(2) == 1 {
			services = append(services, s)
		}
	}
	return profile.Services.With(d, services)
}

// shuffledRewards is a Fisher-Yates permutation of the reward types.
func shuffledRewards() []profile.Reward {
	rw := profile.Rewards()
	for i := len(rw) - 1; i > 0; i-- {
		j := randomInt(i + 1)
		rw[i], rw[j] = rw[j], rw[i]
	}
	return rw
}
