package humanindex_test

import (
	"errors"
	"testing"

	"github.com/0xer-org/zk/internal/domain/humanindex"
	. "github.com/smartystreets/goconvey/convey"
)

const completeRequest = `{
	"request_id": "req-1",
	"verification_results": {"recaptcha_score": 7500, "sms_verified": 1, "bio_verified": 1},
	"public_inputs": {"w1": 1500, "w2": 2000, "w3": 2500, "w4": 4000, "expected_output": 204}
}`

func TestDecodeRequest(t *testing.T) {
	Convey("Given a complete request payload", t, func() {
		req, err := humanindex.DecodeRequest([]byte(completeRequest))

		Convey("Then it decodes with no field loss", func() {
			So(err, ShouldBeNil)
			So(req.RequestID, ShouldEqual, "req-1")
			So(req.VerificationResults.RecaptchaScore, ShouldEqual, 7500)
			So(req.VerificationResults.SMSVerified, ShouldEqual, 1)
			So(req.VerificationResults.BioVerified, ShouldEqual, 1)
			So(req.PublicInputs.W4, ShouldEqual, 4000)
			So(req.PublicInputs.ExpectedOutput, ShouldEqual, 204)
		})
	})

	Convey("Given malformed JSON", t, func() {
		_, err := humanindex.DecodeRequest([]byte("{ invalid json }"))

		Convey("Then decoding fails with ErrInvalidPayload", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, humanindex.ErrInvalidPayload), ShouldBeTrue)
		})
	})

	Convey("Given a payload with bio_verified absent", t, func() {
		payload := `{
			"request_id": "req-2",
			"verification_results": {"recaptcha_score": 7500, "sms_verified": 1},
			"public_inputs": {"w1": 1500, "w2": 2000, "w3": 2500, "w4": 4000, "expected_output": 204}
		}`
		_, err := humanindex.DecodeRequest([]byte(payload))

		Convey("Then decoding fails with ErrMissingField naming the field", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, humanindex.ErrMissingField), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "bio_verified")
		})
	})

	Convey("Given a payload with no verification_results at all", t, func() {
		payload := `{
			"request_id": "req-3",
			"public_inputs": {"w1": 1500, "w2": 2000, "w3": 2500, "w4": 4000, "expected_output": 204}
		}`
		_, err := humanindex.DecodeRequest([]byte(payload))

		Convey("Then decoding fails with ErrMissingField", func() {
			So(errors.Is(err, humanindex.ErrMissingField), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "verification_results")
		})
	})

	Convey("Given a payload with an empty request_id", t, func() {
		payload := `{
			"request_id": "",
			"verification_results": {"recaptcha_score": 7500, "sms_verified": 1, "bio_verified": 1},
			"public_inputs": {"w1": 1500, "w2": 2000, "w3": 2500, "w4": 4000, "expected_output": 204}
		}`
		_, err := humanindex.DecodeRequest([]byte(payload))

		Convey("Then decoding fails", func() {
			So(errors.Is(err, humanindex.ErrMissingField), ShouldBeTrue)
		})
	})

	Convey("Given a zero-valued flag that is explicitly present", t, func() {
		payload := `{
			"request_id": "req-4",
			"verification_results": {"recaptcha_score": 7500, "sms_verified": 0, "bio_verified": 0},
			"public_inputs": {"w1": 1500, "w2": 2000, "w3": 2500, "w4": 4000, "expected_output": 38}
		}`
		req, err := humanindex.DecodeRequest([]byte(payload))

		Convey("Then zero is accepted as a value, not treated as absent", func() {
			So(err, ShouldBeNil)
			So(req.VerificationResults.SMSVerified, ShouldEqual, 0)
			So(req.VerificationResults.BioVerified, ShouldEqual, 0)
		})
	})
}
