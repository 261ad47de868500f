package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSubmitter struct {
	mu    sync.Mutex
	calls []payload.Payload
	err   error
	gate  chan struct{}
}

func (c *countingSubmitter) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	c.mu.Lock()
	c.calls = append(c.calls, p)
	gate, err := c.gate, c.err
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return recommendation.Results{}, ctx.Err()
		}
	}
	if err != nil {
		return recommendation.Results{}, err
	}
	return recommendation.NewResults([]recommendation.Recommendation{{CardName: "Cashback Plus"}}, p), nil
}

func (c *countingSubmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func walkToLastStep(s *Session) {
	for i := 1; i < profile.TotalSteps; i++ {
		_, err := s.Advance(context.Background())
		So(err, ShouldBeNil)
	}
	So(s.View().Step, ShouldEqual, profile.TotalSteps)
}

func TestSessionSubmit(t *testing.T) {
	Convey("Given a session over the sample draft", t, func() {
		sub := &countingSubmitter{}
		s := NewSession(sub, WithID("s1"), WithDraft(profile.Sample()), WithTopN(2))
		walkToLastStep(s)

		Convey("Advancing from the last step submits exactly once", func() {
			tr, err := s.Advance(context.Background())
			So(err, ShouldBeNil)
			So(tr.Submit, ShouldBeTrue)
			So(sub.count(), ShouldEqual, 1)
			So(len(sub.calls[0].TopCategories), ShouldEqual, 2)

			v := s.View()
			So(v.State, ShouldEqual, Done)
			So(v.Results, ShouldNotBeNil)
			So(v.Results.Recommendations[0].MatchReasons, ShouldResemble, recommendation.DefaultMatchReasons())

			Convey("And the draft is discarded", func() {
				So(s.Draft().Equal(profile.New()), ShouldBeTrue)
			})

			Convey("And edits are refused until reset", func() {
				So(s.SetField("financial.annual_income", json.RawMessage(`1`)), ShouldEqual, ErrSessionDone)
				So(s.Reset(), ShouldBeNil)
				v := s.View()
				So(v.Step, ShouldEqual, 1)
				So(v.Results, ShouldBeNil)
				So(s.SetField("financial.annual_income", json.RawMessage(`1`)), ShouldBeNil)
			})
		})

		Convey("A failed submission keeps the draft and can be retried", func() {
			sub.err = errors.New("Server responded with status: 503")
			_, err := s.Advance(context.Background())
			So(err, ShouldNotBeNil)

			v := s.View()
			So(v.State, ShouldEqual, Failed)
			So(v.Step, ShouldEqual, profile.TotalSteps)
			So(v.Error, ShouldEqual, "Server responded with status: 503")
			So(s.Draft().Equal(profile.Sample()), ShouldBeTrue)

			sub.err = nil
			_, err = s.Advance(context.Background())
			So(err, ShouldBeNil)
			So(sub.count(), ShouldEqual, 2)
			So(s.View().State, ShouldEqual, Done)
			So(s.View().Error, ShouldBeEmpty)
		})

		Convey("Leaving the failed state drops the old submission error", func() {
			sub.err = errors.New("Server responded with status: 503")
			_, err := s.Advance(context.Background())
			So(err, ShouldNotBeNil)
			So(s.View().Error, ShouldNotBeEmpty)

			So(s.SetField("fees.max_annual_fee", json.RawMessage(`null`)), ShouldBeNil)
			tr, err := s.Advance(context.Background())
			So(err, ShouldBeNil)
			So(tr.Violations, ShouldNotBeEmpty)

			v := s.View()
			So(v.State, ShouldEqual, Editing)
			So(v.Violations, ShouldContain, "Please enter the maximum annual fee you're willing to pay")
			So(v.Error, ShouldBeEmpty)
			So(sub.count(), ShouldEqual, 1)

			Convey("And so does going back", func() {
				So(s.SetField("fees.max_annual_fee", json.RawMessage(`5000`)), ShouldBeNil)
				_, err := s.Advance(context.Background())
				So(err, ShouldNotBeNil)
				So(s.Retreat(), ShouldBeNil)
				So(s.View().Error, ShouldBeEmpty)
			})
		})

		Convey("A cancelled context fails the submission", func() {
			sub.gate = make(chan struct{})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Advance(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(s.View().State, ShouldEqual, Failed)
		})
	})
}

func TestSessionSingleFlight(t *testing.T) {
	Convey("Given a submission that blocks", t, func() {
		sub := &countingSubmitter{gate: make(chan struct{})}
		s := NewSession(sub, WithDraft(profile.Sample()))
		walkToLastStep(s)

		done := make(chan error, 1)
		go func() {
			_, err := s.Advance(context.Background())
			done <- err
		}()

		for s.View().State != Submitting {
			runtime.Gosched()
		}

		Convey("A second advance, edit or retreat is refused meanwhile", func() {
			_, err := s.Advance(context.Background())
			So(err, ShouldEqual, ErrSubmissionInFlight)
			So(s.Retreat(), ShouldEqual, ErrSubmissionInFlight)
			So(s.Reset(), ShouldEqual, ErrSubmissionInFlight)
			So(SetValue(s, profile.AnnualIncome, profile.Num(1)), ShouldEqual, ErrSubmissionInFlight)

			close(sub.gate)
			So(<-done, ShouldBeNil)
			So(sub.count(), ShouldEqual, 1)
			So(s.View().State, ShouldEqual, Done)
		})
	})
}

func TestSessionEditing(t *testing.T) {
	Convey("Given a blank session", t, func() {
		var moved []int
		s := NewSession(nil, WithStepperOptions(WithTransitionHook(func(_, to int) { moved = append(moved, to) })))

		Convey("Violations block the first step", func() {
			tr, err := s.Advance(context.Background())
			So(err, ShouldBeNil)
			So(tr.Violations, ShouldContain, "Please enter a valid annual income")
			So(s.View().Violations, ShouldResemble, tr.Violations)
		})

		Convey("Fields set through the session are validated on advance", func() {
			So(s.SetFields(map[string]json.RawMessage{
				"financial.annual_income": json.RawMessage(`60000`),
				"financial.credit_score":  json.RawMessage(`"good"`),
			}), ShouldBeNil)
			tr, err := s.Advance(context.Background())
			So(err, ShouldBeNil)
			So(tr.To, ShouldEqual, 2)
			So(moved, ShouldResemble, []int{2})
		})

		Convey("Unknown paths surface the profile error", func() {
			err := s.SetField("financial.salary", json.RawMessage(`1`))
			So(errors.Is(err, profile.ErrUnknownPath), ShouldBeTrue)
		})

		Convey("Without a submitter the last step fails visibly", func() {
			s2 := NewSession(nil, WithDraft(profile.Sample()))
			walkToLastStep(s2)
			_, err := s2.Advance(context.Background())
			So(err, ShouldEqual, ErrNoSubmitter)
			So(s2.View().State, ShouldEqual, Failed)
		})
	})
}

func TestSubmitterFunc(t *testing.T) {
	Convey("SubmitterFunc forwards the call", t, func() {
		called := false
		f := SubmitterFunc(func(context.Context, payload.Payload) (recommendation.Results, error) {
			called = true
			return recommendation.Results{}, nil
		})
		_, err := f.Submit(context.Background(), payload.Payload{})
		So(err, ShouldBeNil)
		So(called, ShouldBeTrue)
	})
}
