package fixture_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/0xer-org/zk/internal/domain/humanindex"
	"github.com/0xer-org/zk/internal/fixture"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPayload(t *testing.T) {
	Convey("Given the normal scenario", t, func() {
		data, err := fixture.Payload("req-normal", fixture.Normal)
		So(err, ShouldBeNil)

		Convey("Then the payload decodes and carries expected_output 204", func() {
			req, err := humanindex.DecodeRequest(data)
			So(err, ShouldBeNil)
			So(req.RequestID, ShouldEqual, "req-normal")
			So(req.VerificationResults.RecaptchaScore, ShouldEqual, 7500)
			So(req.PublicInputs.ExpectedOutput, ShouldEqual, 204)
		})

		Convey("And the expected output matches the formula", func() {
			req, err := humanindex.DecodeRequest(data)
			So(err, ShouldBeNil)
			So(humanindex.Compute(req.VerificationResults, req.PublicInputs),
				ShouldEqual, req.PublicInputs.ExpectedOutput)
		})
	})

	Convey("Given the boundary scenario", t, func() {
		data, err := fixture.Payload("req-boundary", fixture.Boundary)
		So(err, ShouldBeNil)

		Convey("Then the payload carries maximum inputs and expected_output 255", func() {
			req, err := humanindex.DecodeRequest(data)
			So(err, ShouldBeNil)
			So(req.VerificationResults.RecaptchaScore, ShouldEqual, 10000)
			So(req.PublicInputs.ExpectedOutput, ShouldEqual, 255)
		})
	})

	Convey("Given the invalid_json scenario", t, func() {
		data, err := fixture.Payload("req-invalid", fixture.InvalidJSON)
		So(err, ShouldBeNil)

		Convey("Then the payload fails standard JSON parsing", func() {
			So(json.Valid(data), ShouldBeFalse)
			_, err := humanindex.DecodeRequest(data)
			So(errors.Is(err, humanindex.ErrInvalidPayload), ShouldBeTrue)
		})
	})

	Convey("Given the missing_fields scenario", t, func() {
		data, err := fixture.Payload("req-missing", fixture.MissingFields)
		So(err, ShouldBeNil)

		Convey("Then the payload is valid JSON", func() {
			So(json.Valid(data), ShouldBeTrue)
		})

		Convey("And bio_verified is absent under verification_results", func() {
			var raw map[string]json.RawMessage
			So(json.Unmarshal(data, &raw), ShouldBeNil)

			var vr map[string]json.RawMessage
			So(json.Unmarshal(raw["verification_results"], &vr), ShouldBeNil)
			_, present := vr["bio_verified"]
			So(present, ShouldBeFalse)
		})

		Convey("And strict decoding rejects it", func() {
			_, err := humanindex.DecodeRequest(data)
			So(errors.Is(err, humanindex.ErrMissingField), ShouldBeTrue)
		})
	})

	Convey("Given an unrecognized scenario", t, func() {
		data, err := fixture.Payload("req-bad", fixture.Scenario(42))

		Convey("Then it fails fast with no payload", func() {
			So(errors.Is(err, fixture.ErrUnknownScenario), ShouldBeTrue)
			So(data, ShouldBeNil)
		})
	})
}

func TestRequestRoundTrip(t *testing.T) {
	Convey("Given each well-formed scenario", t, func() {
		for _, sc := range []fixture.Scenario{fixture.Normal, fixture.Boundary} {
			Convey("When serializing and re-parsing the "+sc.String()+" payload", func() {
				original, err := fixture.Request("rt-"+sc.String(), sc)
				So(err, ShouldBeNil)

				data, err := fixture.Payload("rt-"+sc.String(), sc)
				So(err, ShouldBeNil)

				decoded, err := humanindex.DecodeRequest(data)
				So(err, ShouldBeNil)

				Convey("Then the structures are equivalent", func() {
					So(*decoded, ShouldResemble, *original)
				})
			})
		}
	})

	Convey("Given a malformed scenario", t, func() {
		_, err := fixture.Request("rt-invalid", fixture.InvalidJSON)

		Convey("Then there is no typed form", func() {
			So(errors.Is(err, fixture.ErrNoTypedForm), ShouldBeTrue)
		})
	})
}
