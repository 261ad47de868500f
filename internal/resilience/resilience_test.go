package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRetry(t *testing.T) {
	Convey("Given a flaky function", t, func() {
		ctx := context.Background()
		calls := 0
		flaky := func(n int) func(context.Context) error {
			return func(context.Context) error {
				calls++
				if calls < n {
					return errors.New("not yet")
				}
				return nil
			}
		}

		Convey("It succeeds once fn does", func() {
			So(Retry(ctx, 3, time.Millisecond, nil, flaky(3)), ShouldBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("It gives up after the last attempt", func() {
			err := Retry(ctx, 2, time.Millisecond, nil, flaky(5))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "after 2 attempts")
			So(calls, ShouldEqual, 2)
		})

		Convey("A done context stops the wait", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := Retry(cctx, 5, time.Hour, nil, flaky(5))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(calls, ShouldEqual, 1)
		})
	})
}

func TestBreaker(t *testing.T) {
	Convey("Given a breaker with threshold 2", t, func() {
		now := time.Unix(1_700_000_000, 0)
		b := NewBreaker(2, time.Minute)
		b.now = func() time.Time { return now }
		boom := errors.New("boom")
		fail := func() error { return boom }
		ok := func() error { return nil }

		Convey("It opens after consecutive failures", func() {
			So(b.Do(fail, nil), ShouldEqual, boom)
			So(b.State(), ShouldEqual, StateClosed)
			So(b.Do(fail, nil), ShouldEqual, boom)
			So(b.State(), ShouldEqual, StateOpen)
			So(b.Do(ok, nil), ShouldEqual, ErrOpen)
		})

		Convey("A probe after the timeout closes it again", func() {
			_ = b.Do(fail, nil)
			_ = b.Do(fail, nil)
			now = now.Add(time.Minute)
			So(b.Do(ok, nil), ShouldBeNil)
			So(b.State(), ShouldEqual, StateClosed)
		})

		Convey("A failed probe reopens it", func() {
			_ = b.Do(fail, nil)
			_ = b.Do(fail, nil)
			now = now.Add(time.Minute)
			So(b.Do(fail, nil), ShouldEqual, boom)
			So(b.State(), ShouldEqual, StateOpen)
			So(b.State().String(), ShouldEqual, "open")
		})

		Convey("Ignored errors do not count", func() {
			ignore := func(err error) bool { return errors.Is(err, boom) }
			for i := 0; i < 5; i++ {
				_ = b.Do(fail, ignore)
			}
			So(b.State(), ShouldEqual, StateClosed)
		})

		Convey("A zero threshold disables it", func() {
			off := NewBreaker(0, time.Minute)
			for i := 0; i < 5; i++ {
				So(off.Do(fail, nil), ShouldEqual, boom)
			}
			So(off.State(), ShouldEqual, StateClosed)
		})
	})
}
