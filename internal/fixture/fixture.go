package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/0xer-org/zk/internal/domain/humanindex"
)

// Shipped weight configuration, fixed-point scale 10,000. The weights
// sum to exactly one full scale, so the computed index can reach but
// never exceed 255.
const (
	weight1 uint32 = 1500 // 0.15
	weight2 uint32 = 2000 // 0.20
	weight3 uint32 = 2500 // 0.25
	weight4 uint32 = 4000 // 0.40
)

// invalidJSONPayload is deliberately unparseable.
const invalidJSONPayload = "{ invalid json }"

// NewRequestID returns a unique request ID tagged with the scenario
// name, e.g. "test-normal-2b1f...".
func NewRequestID(sc Scenario) string {
	return "test-" + sc.String() + "-" + uuid.New().String()
}

// Request builds the typed form of a well-formed scenario. The
// deliberately malformed scenarios have no typed form and return
// ErrNoTypedForm.
func Request(requestID string, sc Scenario) (*humanindex.ProverRequest, error) {
	switch sc {
	case Normal:
		return buildRequest(requestID, humanindex.VerificationResults{
			RecaptchaScore: 7500, // 0.75
			SMSVerified:    1,
			BioVerified:    1,
		}), nil
	case Boundary:
		return buildRequest(requestID, humanindex.VerificationResults{
			RecaptchaScore: humanindex.Scale, // 1.0, the maximum
			SMSVerified:    1,
			BioVerified:    1,
		}), nil
	case InvalidJSON, MissingFields:
		return nil, fmt.Errorf("%w: %s", ErrNoTypedForm, sc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownScenario, int(sc))
	}
}

// Payload builds the wire payload for a scenario. Well-formed scenarios
// serialize their request; InvalidJSON returns raw unparseable text and
// MissingFields a request whose verification results omit bio_verified.
// Unrecognized scenarios fail with ErrUnknownScenario and produce no
// payload.
func Payload(requestID string, sc Scenario) ([]byte, error) {
	switch sc {
	case Normal, Boundary:
		req, err := Request(requestID, sc)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", sc, err)
		}
		return data, nil

	case InvalidJSON:
		return []byte(invalidJSONPayload), nil

	case MissingFields:
		return marshalWithoutBio(requestID)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownScenario, int(sc))
	}
}

// buildRequest attaches the shipped weights and the expected output the
// formula yields for the given verification results.
func buildRequest(requestID string, vr humanindex.VerificationResults) *humanindex.ProverRequest {
	pi := humanindex.PublicInputs{W1: weight1, W2: weight2, W3: weight3, W4: weight4}
	pi.ExpectedOutput = humanindex.Compute(vr, pi)
	return &humanindex.ProverRequest{
		RequestID:           requestID,
		VerificationResults: vr,
		PublicInputs:        pi,
	}
}

// partialVerificationResults drops bio_verified from the wire shape so
// the consumer's required-field validation trips.
type partialVerificationResults struct {
	RecaptchaScore uint32 `json:"recaptcha_score"`
	SMSVerified    uint32 `json:"sms_verified"`
}

type partialRequest struct {
	RequestID           string                     `json:"request_id"`
	VerificationResults partialVerificationResults `json:"verification_results"`
	PublicInputs        humanindex.PublicInputs    `json:"public_inputs"`
}

func marshalWithoutBio(requestID string) ([]byte, error) {
	req := partialRequest{
		RequestID: requestID,
		VerificationResults: partialVerificationResults{
			RecaptchaScore: 7500,
			SMSVerified:    1,
		},
		PublicInputs: humanindex.PublicInputs{
			W1: weight1, W2: weight2, W3: weight3, W4: weight4,
			// Matches the Normal scenario; the consumer never reads it
			// because validation fails first.
			ExpectedOutput: 204,
		},
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal missing_fields request: %w", err)
	}
	return data, nil
}
