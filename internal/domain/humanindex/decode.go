package humanindex

import (
	"encoding/json"
	"fmt"
)

// Wire mirrors of the request types with pointer fields, so that an
// absent field is distinguishable from a zero value. encoding/json
// zero-fills missing fields on plain structs; the consumer contract
// requires every field to be present.
type wireVerificationResults struct {
	RecaptchaScore *uint32 `json:"recaptcha_score"`
	SMSVerified    *uint32 `json:"sms_verified"`
	BioVerified    *uint32 `json:"bio_verified"`
}

type wirePublicInputs struct {
	W1             *uint32 `json:"w1"`
	W2             *uint32 `json:"w2"`
	W3             *uint32 `json:"w3"`
	W4             *uint32 `json:"w4"`
	ExpectedOutput *uint32 `json:"expected_output"`
}

type wireRequest struct {
	RequestID           *string                  `json:"request_id"`
	VerificationResults *wireVerificationResults `json:"verification_results"`
	PublicInputs        *wirePublicInputs        `json:"public_inputs"`
}

// DecodeRequest parses a ProverRequest from its JSON wire form. Both
// malformed JSON and structurally incomplete payloads are rejected:
// every field of the request is required.
func DecodeRequest(data []byte) (*ProverRequest, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if w.RequestID == nil || *w.RequestID == "" {
		return nil, fmt.Errorf("%w: request_id", ErrMissingField)
	}
	if w.VerificationResults == nil {
		return nil, fmt.Errorf("%w: verification_results", ErrMissingField)
	}
	if w.PublicInputs == nil {
		return nil, fmt.Errorf("%w: public_inputs", ErrMissingField)
	}

	vr := w.VerificationResults
	for name, field := range map[string]*uint32{
		"verification_results.recaptcha_score": vr.RecaptchaScore,
		"verification_results.sms_verified":    vr.SMSVerified,
		"verification_results.bio_verified":    vr.BioVerified,
	} {
		if field == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	pi := w.PublicInputs
	for name, field := range map[string]*uint32{
		"public_inputs.w1":              pi.W1,
		"public_inputs.w2":              pi.W2,
		"public_inputs.w3":              pi.W3,
		"public_inputs.w4":              pi.W4,
		"public_inputs.expected_output": pi.ExpectedOutput,
	} {
		if field == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	return &ProverRequest{
		RequestID: *w.RequestID,
		VerificationResults: VerificationResults{
			RecaptchaScore: *vr.RecaptchaScore,
			SMSVerified:    *vr.SMSVerified,
			BioVerified:    *vr.BioVerified,
		},
		PublicInputs: PublicInputs{
			W1:             *pi.W1,
			W2:             *pi.W2,
			W3:             *pi.W3,
			W4:             *pi.W4,
			ExpectedOutput: *pi.ExpectedOutput,
		},
	}, nil
}
