package recommender

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwise/internal/adapters/cache"
	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/internal/domain/wizard"
	"github.com/okian/cardwise/internal/resilience"
	"github.com/okian/cardwise/pkg/metrics"
)

func samplePayload() payload.Payload {
	return payload.Format(profile.Sample())
}

func serve(status int, body string, hits *int32, seen func(*http.Request, []byte)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		b, _ := io.ReadAll(r.Body)
		if seen != nil {
			seen(r, b)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func TestClientSubmit(t *testing.T) {
	Convey("Given a recommendation service", t, func() {
		ctx := context.Background()
		var hits int32

		Convey("A successful submission is exactly one JSON POST", func() {
			var method, ctype, accept string
			var sent map[string]any
			srv := serve(http.StatusOK, `[{"card_name":"A","issuer":"X","annual_fee":"₹0","joining_fee":"₹0","rewards":"1%","match_percentage":91,"match_reasons":["r"]}]`,
				&hits, func(r *http.Request, b []byte) {
					method = r.Method
					ctype = r.Header.Get("Content-Type")
					accept = r.Header.Get("Accept")
					_ = json.Unmarshal(b, &sent)
				})
			defer srv.Close()

			res, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(err, ShouldBeNil)
			So(atomic.LoadInt32(&hits), ShouldEqual, 1)
			So(method, ShouldEqual, http.MethodPost)
			So(ctype, ShouldEqual, "application/json")
			So(accept, ShouldEqual, "application/json")
			So(sent["income"], ShouldEqual, 75000.0)
			So(sent["creditScore"], ShouldEqual, 650.0)
			So(len(res.Recommendations), ShouldEqual, 1)
			So(res.Recommendations[0].CardName, ShouldEqual, "A")
			So(res.Recommendations[0].MatchReasons, ShouldResemble, []string{"r"})
		})

		Convey("Missing match reasons are filled with the defaults", func() {
			srv := serve(http.StatusOK, `[{"card_name":"A","match_percentage":140},{"card_name":"B","match_percentage":60,"match_reasons":[]}]`, nil, nil)
			defer srv.Close()

			res, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(err, ShouldBeNil)
			So(len(res.Recommendations), ShouldEqual, 2)
			So(res.Recommendations[0].CardName, ShouldEqual, "A")
			So(res.Recommendations[0].MatchPercentage, ShouldEqual, 100.0)
			So(res.Recommendations[0].MatchReasons, ShouldResemble, recommendation.DefaultMatchReasons())
			So(res.Recommendations[1].MatchReasons, ShouldHaveLength, 3)
			So(res.UserProfile.LifestyleScore, ShouldEqual, 45)
		})

		Convey("A plain text failure carries the status and the body", func() {
			srv := serve(http.StatusInternalServerError, "internal error", &hits, nil)
			defer srv.Close()

			_, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Server responded with status: 500. Details: internal error")
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
			var se *SubmissionError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Status, ShouldEqual, http.StatusInternalServerError)
			So(se.Body, ShouldEqual, "internal error")
			So(atomic.LoadInt32(&hits), ShouldEqual, 1)
			So(Outcome(err), ShouldEqual, metrics.OutcomeRejected)
		})

		Convey("A JSON error field becomes the message", func() {
			srv := serve(http.StatusBadRequest, `{"error":"Income is required"}`, nil, nil)
			defer srv.Close()

			_, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Income is required")
		})

		Convey("A JSON failure without an error field reports the status", func() {
			srv := serve(http.StatusServiceUnavailable, `{"detail":"down"}`, nil, nil)
			defer srv.Close()

			_, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Server responded with status: 503")
		})

		Convey("A malformed success body is a decode error", func() {
			srv := serve(http.StatusOK, `{"recommendations":`, nil, nil)
			defer srv.Close()

			_, err := NewClient(srv.URL).Submit(ctx, samplePayload())
			So(errors.Is(err, ErrDecode), ShouldBeTrue)
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
			So(Outcome(err), ShouldEqual, metrics.OutcomeDecode)
		})

		Convey("An unreachable service is a transport error", func() {
			srv := serve(http.StatusOK, `[]`, nil, nil)
			url := srv.URL
			srv.Close()

			_, err := NewClient(url, WithTimeout(time.Second)).Submit(ctx, samplePayload())
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "Could not reach the recommendation service")
			So(Outcome(err), ShouldEqual, metrics.OutcomeTransport)
		})

		Convey("A canceled context aborts the call", func() {
			srv := serve(http.StatusOK, `[]`, nil, nil)
			defer srv.Close()

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := NewClient(srv.URL).Submit(cctx, samplePayload())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(Outcome(err), ShouldEqual, metrics.OutcomeCanceled)
		})
	})
}

func TestClientHealth(t *testing.T) {
	Convey("Given a service exposing /api/health", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"status":"healthy"}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("The health URL is derived from the submit URL", func() {
			So(deriveHealthURL(srv.URL+"/api/recommend"), ShouldEqual, srv.URL+"/api/health")
			So(NewClient(srv.URL+"/api/recommend").Health(context.Background()), ShouldBeNil)
		})

		Convey("A missing endpoint is reported", func() {
			err := NewClient(srv.URL+"/api/recommend", WithHealthURL(srv.URL+"/nope")).Health(context.Background())
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
		})
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given the bundled catalog", t, func() {
		c := NewCatalog()

		Convey("It returns the cards in order", func() {
			res, err := c.Submit(context.Background(), samplePayload())
			So(err, ShouldBeNil)
			So(c.Len(), ShouldEqual, 5)
			So(len(res.Recommendations), ShouldEqual, 5)
			So(res.Recommendations[0].CardName, ShouldEqual, "Premium Travel Rewards Card")
			So(res.Recommendations[0].MatchPercentage, ShouldEqual, 95.0)
			So(res.Recommendations[4].MatchPercentage, ShouldEqual, 75.0)
			for _, r := range res.Recommendations {
				So(r.MatchReasons, ShouldNotBeEmpty)
			}
		})

		Convey("Results do not alias the catalog", func() {
			res, _ := c.Submit(context.Background(), samplePayload())
			res.Recommendations[0].MatchReasons[0] = "changed"
			again, _ := c.Submit(context.Background(), samplePayload())
			So(again.Recommendations[0].MatchReasons[0], ShouldNotEqual, "changed")
		})

		Convey("A canceled context fails", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := c.Submit(ctx, samplePayload())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("Unknown keys and empty catalogs are rejected", func() {
			_, err := LoadCatalog(strings.NewReader("cards:\n  - card_name: A\n    colour: red\n"))
			So(errors.Is(err, ErrDecode), ShouldBeTrue)
			_, err = LoadCatalog(strings.NewReader("cards: []\n"))
			So(errors.Is(err, ErrDecode), ShouldBeTrue)
		})
	})
}

type countingSubmitter struct {
	calls int32
	err   error
}

func (c *countingSubmitter) Submit(_ context.Context, p payload.Payload) (recommendation.Results, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return recommendation.Results{}, c.err
	}
	return recommendation.NewResults([]recommendation.Recommendation{{CardName: "A", MatchPercentage: 80}}, p), nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("conn refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("conn refused")
}
func (brokenCache) Close() error { return nil }

func TestCached(t *testing.T) {
	Convey("Given a cached submitter", t, func() {
		ctx := context.Background()
		next := &countingSubmitter{}
		mem := cache.NewMemory(time.Now)
		var sub wizard.Submitter = NewCached(next, mem, time.Minute, nil)

		Convey("Identical payloads are served from cache", func() {
			first, err := sub.Submit(ctx, samplePayload())
			So(err, ShouldBeNil)
			second, err := sub.Submit(ctx, samplePayload())
			So(err, ShouldBeNil)
			So(atomic.LoadInt32(&next.calls), ShouldEqual, 1)
			So(second, ShouldResemble, first)
			So(mem.Len(), ShouldEqual, 1)
		})

		Convey("Different payloads miss", func() {
			p := samplePayload()
			_, _ = sub.Submit(ctx, p)
			p.Income++
			_, _ = sub.Submit(ctx, p)
			So(atomic.LoadInt32(&next.calls), ShouldEqual, 2)
		})

		Convey("Failures are not cached", func() {
			next.err = errors.New("boom")
			_, err := sub.Submit(ctx, samplePayload())
			So(err, ShouldNotBeNil)
			So(mem.Len(), ShouldEqual, 0)
		})

		Convey("A broken cache is bypassed", func() {
			sub = NewCached(next, brokenCache{}, time.Minute, nil)
			res, err := sub.Submit(ctx, samplePayload())
			So(err, ShouldBeNil)
			So(res.Recommendations, ShouldHaveLength, 1)
		})

		Convey("Keys are stable", func() {
			a, err := Key(samplePayload())
			So(err, ShouldBeNil)
			b, _ := Key(samplePayload())
			So(a, ShouldEqual, b)
			So(a, ShouldHaveLength, 64)
		})
	})
}

func TestInstrumented(t *testing.T) {
	Convey("Given an instrumented submitter", t, func() {
		next := &countingSubmitter{}
		sub := Instrument(next, "test", nil)

		Convey("Results and errors pass through", func() {
			res, err := sub.Submit(context.Background(), samplePayload())
			So(err, ShouldBeNil)
			So(res.Recommendations[0].CardName, ShouldEqual, "A")

			next.err = statusError(opSubmit, 500, nil, "nope")
			_, err = sub.Submit(context.Background(), samplePayload())
			So(err.Error(), ShouldEqual, "nope")
			So(atomic.LoadInt32(&next.calls), ShouldEqual, 2)
		})

		Convey("Outcomes classify errors", func() {
			So(Outcome(nil), ShouldEqual, metrics.OutcomeSuccess)
			So(Outcome(context.DeadlineExceeded), ShouldEqual, metrics.OutcomeCanceled)
			So(Outcome(errors.New("x")), ShouldEqual, metrics.OutcomeTransport)
		})
	})
}

func TestGuarded(t *testing.T) {
	Convey("Given a guarded submitter over a failing service", t, func() {
		next := &countingSubmitter{err: statusError(opSubmit, http.StatusBadGateway, nil, "bad gateway")}
		sub := Guard(next, resilience.NewBreaker(2, time.Hour))
		ctx := context.Background()

		Convey("It stops calling after the threshold", func() {
			for i := 0; i < 4; i++ {
				_, err := sub.Submit(ctx, samplePayload())
				So(errors.Is(err, ErrTransport), ShouldBeTrue)
			}
			So(atomic.LoadInt32(&next.calls), ShouldEqual, 2)
			_, err := sub.Submit(ctx, samplePayload())
			So(errors.Is(err, resilience.ErrOpen), ShouldBeTrue)
		})

		Convey("Client errors do not trip it", func() {
			next.err = statusError(opSubmit, http.StatusBadRequest, nil, "bad input")
			for i := 0; i < 4; i++ {
				_, _ = sub.Submit(ctx, samplePayload())
			}
			So(atomic.LoadInt32(&next.calls), ShouldEqual, 4)
		})
	})
}
