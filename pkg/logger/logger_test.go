package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default initializer", t, func() {
		So(Init(), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
	})

	Convey("Given an unknown format", t, func() {
		err := InitWithOptions(WithFormat("xml"))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "xml")
		So(Init(), ShouldBeNil)
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("Fields are encoded as attributes", func() {
			Named("wizard").Info(context.Background(), "advanced",
				String("session", "abc"), Int("step", 2), Bool("valid", true), Error(errors.New("boom")))

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "advanced")
			So(rec["logger"], ShouldEqual, "wizard")
			So(rec["session"], ShouldEqual, "abc")
			So(rec["step"], ShouldEqual, float64(2))
			So(rec["valid"], ShouldBeTrue)
			So(rec["error"], ShouldEqual, "boom")
			So(rec["source"], ShouldContainSubstring, "logger_test.go")
		})

		Convey("Debug is suppressed at info level", func() {
			Get().Debug(context.Background(), "hidden")
			So(buf.Len(), ShouldEqual, 0)

			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(context.Background(), "shown")
			So(buf.String(), ShouldContainSubstring, "shown")
		})

		Convey("With attaches fields to every record", func() {
			Get().With(String("component", "api")).Warn(context.Background(), "slow")
			So(strings.Contains(buf.String(), `"component":"api"`), ShouldBeTrue)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestDiscard(t *testing.T) {
	Convey("Discard never panics", t, func() {
		l := Discard()
		So(func() { l.Named("x").With(Int("a", 1)).Error(context.Background(), "nothing") }, ShouldNotPanic)
	})
}
