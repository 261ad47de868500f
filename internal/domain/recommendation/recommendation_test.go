package recommendation_test

import (
	"testing"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLifestyleScore(t *testing.T) {
	Convey("Given travel and fee tolerance", t, func() {
		p := payload.Payload{
			TravelFrequency: payload.TravelFrequency{Domestic: 2, International: 1},
			MaxAnnualFee:    5000,
		}
		So(recommendation.LifestyleScore(p), ShouldEqual, 45)

		Convey("Large values clamp at 100", func() {
			p.TravelFrequency.International = 50
			So(recommendation.LifestyleScore(p), ShouldEqual, 100)
		})

		Convey("Negative values clamp at 0", func() {
			p.TravelFrequency = payload.TravelFrequency{Domestic: -10}
			p.MaxAnnualFee = 0
			So(recommendation.LifestyleScore(p), ShouldEqual, 0)
		})

		Convey("Fractions round to nearest", func() {
			p.TravelFrequency = payload.TravelFrequency{}
			p.MaxAnnualFee = 2500
			So(recommendation.LifestyleScore(p), ShouldEqual, 3)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a recommendation without reasons", t, func() {
		r := recommendation.Recommendation{CardName: "Cashback Plus", MatchPercentage: 120}.Normalize()

		So(r.MatchReasons, ShouldResemble, recommendation.DefaultMatchReasons())
		So(len(r.MatchReasons), ShouldEqual, 3)
		So(r.MatchPercentage, ShouldEqual, 100.0)
	})

	Convey("Given a recommendation with reasons", t, func() {
		reasons := []string{"Great for dining"}
		r := recommendation.Recommendation{MatchPercentage: -4, MatchReasons: reasons}.Normalize()
		reasons[0] = "changed"

		So(r.MatchReasons, ShouldResemble, []string{"Great for dining"})
		So(r.MatchPercentage, ShouldEqual, 0.0)
	})
}

func TestNewResults(t *testing.T) {
	Convey("Given recommendations and a payload", t, func() {
		p := payload.Payload{
			TopCategories:   []payload.CategoryAmount{{Category: "dining", Amount: 1200}},
			TravelFrequency: payload.TravelFrequency{Domestic: 1},
			MaxAnnualFee:    1000,
		}
		recs := []recommendation.Recommendation{
			{CardName: "B", MatchPercentage: 70},
			{CardName: "A", MatchPercentage: 90},
		}
		res := recommendation.NewResults(recs, p)

		Convey("Order is preserved as given", func() {
			So(res.Recommendations[0].CardName, ShouldEqual, "B")
			So(res.Recommendations[1].CardName, ShouldEqual, "A")
		})

		Convey("The profile summary is attached", func() {
			So(res.UserProfile.TopCategories, ShouldResemble, p.TopCategories)
			So(res.UserProfile.LifestyleScore, ShouldEqual, 11)
		})

		Convey("Every entry carries reasons", func() {
			for _, r := range res.Recommendations {
				So(r.MatchReasons, ShouldNotBeEmpty)
			}
		})
	})
}
