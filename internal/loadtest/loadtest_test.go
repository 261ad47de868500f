package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwise/internal/adapters/http/api"
	"github.com/okian/cardwise/internal/adapters/recommender"
	service "github.com/okian/cardwise/internal/app"
	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/validation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/pkg/logger"
)

func init() {
	_ = logger.InitWithOptions(logger.WithWriter(os.Stderr))
	_ = logger.SetLevelString("error")
}

func newServer(sub wizard.Submitter) (*httptest.Server, func()) {
	svc := service.New(service.WithLogger(logger.Discard()), service.WithSubmitter(sub))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, payload.DefaultTopN).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	return ts, func() {
		ts.Close()
		svc.Stop()
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given generated profiles", t, func() {
		drafts := Generate(50)
		So(drafts, ShouldHaveLength, 50)

		Convey("Then every profile passes every step", func() {
			for _, d := range drafts {
				for step := 1; step <= profile.TotalSteps; step++ {
					So(validation.Validate(step, d), ShouldBeEmpty)
				}
			}
		})

		Convey("Then reward ranks are a permutation", func() {
			for _, d := range drafts {
				seen := map[float64]bool{}
				rk := d.Rewards()
				for _, r := range profile.Rewards() {
					seen[rk.Rank(r).Value] = true
				}
				So(seen, ShouldHaveLength, len(profile.Rewards()))
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a server backed by the catalog", t, func() {
		ts, stop := newServer(recommender.NewCatalog())
		defer stop()

		out := filepath.Join(t.TempDir(), "runs", "profiles.json")
		stats, err := Run(context.Background(), &Config{
			BaseURL:    ts.URL,
			Sessions:   12,
			Workers:    4,
			OutputFile: out,
		})

		Convey("Then every session completes and verifies", func() {
			So(err, ShouldBeNil)
			So(stats.SessionsGenerated, ShouldEqual, 12)
			So(stats.SessionsStarted, ShouldEqual, 12)
			So(stats.SessionsCompleted, ShouldEqual, 12)
			So(stats.SessionsFailed, ShouldEqual, 0)
			So(stats.Mismatches, ShouldEqual, 0)
			So(stats.Recommendations, ShouldBeGreaterThan, 0)
			So(stats.SuccessRate(), ShouldEqual, 100)
		})

		Convey("Then the profiles are saved", func() {
			data, err := os.ReadFile(out)
			So(err, ShouldBeNil)
			var drafts []profile.Draft
			So(json.Unmarshal(data, &drafts), ShouldBeNil)
			So(drafts, ShouldHaveLength, 12)
		})
	})

	Convey("Given a server whose recommender always fails", t, func() {
		failing := wizard.SubmitterFunc(func(context.Context, payload.Payload) (recommendation.Results, error) {
			return recommendation.Results{}, errors.New("upstream down")
		})
		ts, stop := newServer(failing)
		defer stop()

		stats, err := Run(context.Background(), &Config{BaseURL: ts.URL, Sessions: 3, Workers: 2})

		Convey("Then the run reports failed sessions", func() {
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
			So(stats.SessionsStarted, ShouldEqual, 3)
			So(stats.SessionsCompleted, ShouldEqual, 0)
			So(stats.SessionsFailed, ShouldEqual, 3)
		})
	})

	Convey("Given no server", t, func() {
		ts, stop := newServer(recommender.NewCatalog())
		url := ts.URL
		stop()

		_, err := Run(context.Background(), &Config{
			BaseURL:       url,
			HealthRetries: 2,
			HealthDelay:   time.Millisecond,
			Timeout:       time.Second,
		})

		Convey("Then the health check fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "service health check failed")
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given results for a profile", t, func() {
		d := profile.Sample()
		p := payload.Format(d)
		good := recommendation.NewResults([]recommendation.Recommendation{{CardName: "A", MatchPercentage: 80}}, p)

		So(verifyResults(payload.DefaultTopN, Outcome{Draft: d, Results: &good}), ShouldBeNil)

		Convey("A wrong lifestyle score is caught", func() {
			bad := good
			bad.UserProfile.LifestyleScore++
			err := verifyResults(payload.DefaultTopN, Outcome{Draft: d, Results: &bad})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "lifestyle score")
		})

		Convey("Empty results are caught", func() {
			empty := recommendation.NewResults(nil, p)
			So(verifyResults(payload.DefaultTopN, Outcome{Draft: d, Results: &empty}), ShouldNotBeNil)
		})
	})
}
