package validation_test

import (
	"testing"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidateBasicInfo(t *testing.T) {
	Convey("Given step 1", t, func() {
		Convey("A blank draft misses income and credit score", func() {
			v := validation.Validate(profile.StepBasicInfo, profile.New())
			So(v, ShouldResemble, validation.Violations{
				"Please enter a valid annual income",
				"Please select your credit score range",
			})
			So(v.OK(), ShouldBeFalse)
		})

		Convey("Zero income is not valid", func() {
			d := profile.AnnualIncome.With(profile.Sample(), profile.Num(0))
			So(validation.Validate(profile.StepBasicInfo, d), ShouldContain, "Please enter a valid annual income")
		})

		Convey("Negative debt is flagged", func() {
			d := profile.MonthlyDebt.With(profile.Sample(), profile.Num(-5))
			So(validation.Validate(profile.StepBasicInfo, d), ShouldResemble,
				validation.Violations{"Monthly debt cannot be negative"})
		})

		Convey("The sample passes", func() {
			So(validation.Validate(profile.StepBasicInfo, profile.Sample()).OK(), ShouldBeTrue)
		})
	})
}

func TestValidateSpending(t *testing.T) {
	Convey("Given step 2", t, func() {
		Convey("Missing and non-positive categories are named in one message", func() {
			d := profile.Sample()
			d = profile.SpendingOn(profile.Travel).With(d, profile.Num(0))
			d = profile.SpendingOn(profile.Gas).With(d, profile.Number{})
			d = profile.SpendingOn(profile.Dining).With(d, profile.Num(-3))

			So(validation.Validate(profile.StepSpending, d), ShouldResemble, validation.Violations{
				"Please enter spending amounts for: Dining out, Travel, Fuel/transportation",
			})
		})

		Convey("The sample passes", func() {
			So(validation.Validate(profile.StepSpending, profile.Sample()), ShouldBeEmpty)
		})
	})
}

func TestValidateBehaviorAndLifestyle(t *testing.T) {
	Convey("Given steps 3 and 4", t, func() {
		Convey("Blank sections are acceptable", func() {
			So(validation.Validate(profile.StepBehavior, profile.New()), ShouldBeEmpty)
			So(validation.Validate(profile.StepLifestyle, profile.New()), ShouldBeEmpty)
		})

		Convey("Negative counts and unknown habits are flagged", func() {
			d := profile.New()
			d = profile.WeeklyTransactions.With(d, profile.Num(-1))
			d = profile.AverageTransactionValue.With(d, profile.Num(-1))
			d = profile.Habit.With(d, profile.PaymentHabit("whenever"))
			d = profile.DomesticTrips.With(d, profile.Num(-2))
			d = profile.InternationalTrips.With(d, profile.Num(-1))

			So(validation.Validate(profile.StepBehavior, d), ShouldResemble, validation.Violations{
				"Weekly transactions cannot be negative",
				"Average transaction value cannot be negative",
				"Please choose a recognised payment habit",
			})
			So(validation.Validate(profile.StepLifestyle, d), ShouldResemble, validation.Violations{
				"Domestic trips cannot be negative",
				"International trips cannot be negative",
			})
		})
	})
}

func TestValidatePreferences(t *testing.T) {
	Convey("Given step 5", t, func() {
		Convey("A blank draft misses ranks and the fee", func() {
			So(validation.Validate(profile.StepPreferences, profile.New()), ShouldResemble, validation.Violations{
				"Please rank the following reward preferences: Cashback, Travel miles, Shopping discounts, Dining benefits, Entertainment perks",
				"Please enter the maximum annual fee you're willing to pay",
			})
		})

		Convey("A zero fee is allowed", func() {
			d := profile.MaxAnnualFee.With(profile.Sample(), profile.Num(0))
			So(validation.Validate(profile.StepPreferences, d), ShouldBeEmpty)
		})

		Convey("A negative fee is rejected", func() {
			d := profile.MaxAnnualFee.With(profile.Sample(), profile.Num(-1))
			So(validation.Validate(profile.StepPreferences, d), ShouldResemble,
				validation.Violations{"Annual fee cannot be negative"})
		})

		Convey("Unranked rewards are named", func() {
			d := profile.RankOf(profile.DiningBenefits).With(profile.Sample(), profile.Number{})
			So(validation.Validate(profile.StepPreferences, d), ShouldResemble,
				validation.Violations{"Please rank the following reward preferences: Dining benefits"})
		})

		Convey("Unknown premium services are named", func() {
			d := profile.Services.With(profile.Sample(), []profile.PremiumService{profile.ServiceGolf, "yacht"})
			So(validation.Validate(profile.StepPreferences, d), ShouldResemble,
				validation.Violations{"Unknown premium services: yacht"})
		})
	})
}

func TestValidateIsPure(t *testing.T) {
	Convey("Given any step and draft", t, func() {
		drafts := []profile.Draft{profile.New(), profile.Sample(), profile.AnnualIncome.With(profile.New(), profile.Num(-1))}
		for step := 0; step <= profile.TotalSteps+1; step++ {
			for _, d := range drafts {
				So(validation.Validate(step, d), ShouldResemble, validation.Validate(step, d))
			}
		}

		Convey("Out of range steps are reported", func() {
			So(validation.Validate(0, profile.Sample()), ShouldResemble, validation.Violations{"Unknown step 0"})
		})
	})
}
