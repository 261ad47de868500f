package wizard

import (
	"testing"

	"github.com/okian/cardwise/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStepperAdvance(t *testing.T) {
	Convey("Given a fresh stepper", t, func() {
		var moves [][2]int
		s := NewStepper(WithTransitionHook(func(from, to int) { moves = append(moves, [2]int{from, to}) }))
		So(s.Step(), ShouldEqual, 1)
		So(s.State(), ShouldEqual, Editing)

		Convey("A blank draft cannot leave step 1", func() {
			tr, err := s.Advance(profile.New())
			So(err, ShouldBeNil)
			So(tr.To, ShouldEqual, 1)
			So(tr.Violations, ShouldNotBeEmpty)
			So(s.Step(), ShouldEqual, 1)
			So(s.Violations(), ShouldResemble, tr.Violations)
			So(moves, ShouldBeEmpty)
		})

		Convey("A valid draft walks to the last step then asks for submission", func() {
			d := profile.Sample()
			for want := 2; want <= profile.TotalSteps; want++ {
				tr, err := s.Advance(d)
				So(err, ShouldBeNil)
				So(tr.To, ShouldEqual, want)
				So(tr.Submit, ShouldBeFalse)
			}
			tr, err := s.Advance(d)
			So(err, ShouldBeNil)
			So(tr.Submit, ShouldBeTrue)
			So(s.Step(), ShouldEqual, profile.TotalSteps)
			So(s.State(), ShouldEqual, Submitting)
			So(len(moves), ShouldEqual, profile.TotalSteps-1)

			Convey("No further advance or retreat while submitting", func() {
				_, err := s.Advance(d)
				So(err, ShouldEqual, ErrSubmissionInFlight)
				So(s.Retreat(), ShouldEqual, ErrSubmissionInFlight)
				So(s.Reset(), ShouldEqual, ErrSubmissionInFlight)
			})

			Convey("A failure allows a retry from the last step", func() {
				s.Fail()
				So(s.State(), ShouldEqual, Failed)
				tr, err := s.Advance(d)
				So(err, ShouldBeNil)
				So(tr.Submit, ShouldBeTrue)
				So(s.State(), ShouldEqual, Submitting)
			})

			Convey("Completion is terminal until reset", func() {
				s.Complete()
				So(s.State(), ShouldEqual, Done)
				_, err := s.Advance(d)
				So(err, ShouldEqual, ErrSessionDone)
				So(s.Retreat(), ShouldEqual, ErrSessionDone)

				So(s.Reset(), ShouldBeNil)
				So(s.Step(), ShouldEqual, 1)
				So(s.State(), ShouldEqual, Editing)
			})
		})

		Convey("Validation failure never changes the step", func() {
			d := profile.Sample()
			_, _ = s.Advance(d)
			bad := profile.SpendingOn(profile.Gas).With(d, profile.Number{})
			for i := 0; i < 3; i++ {
				tr, err := s.Advance(bad)
				So(err, ShouldBeNil)
				So(tr.To, ShouldEqual, 2)
				So(s.Step(), ShouldEqual, 2)
			}
		})
	})
}

func TestStepperRetreat(t *testing.T) {
	Convey("Given a stepper on step 3 with violations", t, func() {
		s := NewStepper()
		d := profile.Sample()
		_, _ = s.Advance(d)
		_, _ = s.Advance(d)
		_, _ = s.Advance(profile.WeeklyTransactions.With(d, profile.Num(-1)))
		So(s.Step(), ShouldEqual, 3)
		So(s.Violations(), ShouldNotBeEmpty)

		Convey("Retreat clears violations and floors at 1", func() {
			So(s.Retreat(), ShouldBeNil)
			So(s.Violations(), ShouldBeEmpty)
			for i := 0; i < 10; i++ {
				So(s.Retreat(), ShouldBeNil)
				So(s.Step(), ShouldBeGreaterThanOrEqualTo, 1)
			}
			So(s.Step(), ShouldEqual, 1)
		})
	})

	Convey("Given a failed submission", t, func() {
		s := NewStepper(WithTotalSteps(1))
		_, _ = s.Advance(profile.Sample())
		s.Fail()

		Convey("Retreat returns to editing", func() {
			So(s.Retreat(), ShouldBeNil)
			So(s.State(), ShouldEqual, Editing)
			So(s.Step(), ShouldEqual, 1)
		})
	})
}

func TestState(t *testing.T) {
	Convey("States have names", t, func() {
		So(Editing.String(), ShouldEqual, "editing")
		So(Submitting.String(), ShouldEqual, "submitting")
		So(Done.String(), ShouldEqual, "done")
		So(Failed.String(), ShouldEqual, "failed")
		So(State(42).String(), ShouldEqual, "unknown")
		b, err := Done.MarshalText()
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "done")
	})
}
