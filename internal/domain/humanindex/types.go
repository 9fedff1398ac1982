package humanindex

// VerificationResults are the private inputs to the human index
// calculation. RecaptchaScore is fixed-point in [0, 10000]; the two
// verification flags are 0 or 1.
type VerificationResults struct {
	RecaptchaScore uint32 `json:"recaptcha_score"`
	SMSVerified    uint32 `json:"sms_verified"`
	BioVerified    uint32 `json:"bio_verified"`
}

// PublicInputs carries the fixed-point weights and the output the
// prover is expected to reproduce inside the proof.
type PublicInputs struct {
	W1             uint32 `json:"w1"`
	W2             uint32 `json:"w2"`
	W3             uint32 `json:"w3"`
	W4             uint32 `json:"w4"`
	ExpectedOutput uint32 `json:"expected_output"`
}

// ProverRequest is the message published on the request topic.
type ProverRequest struct {
	RequestID           string              `json:"request_id"`
	VerificationResults VerificationResults `json:"verification_results"`
	PublicInputs        PublicInputs        `json:"public_inputs"`
}

// PublicValues is everything committed to a proof: the public inputs
// and the output the computation actually produced.
type PublicValues struct {
	Inputs         PublicInputs `json:"inputs"`
	ComputedOutput uint32       `json:"computed_output"`
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// ProofData holds the proof artifacts, base64-encoded, together with
// the human index the proof committed to.
type ProofData struct {
	Proof           string `json:"proof"`
	PublicInputs    string `json:"public_inputs"`
	VerificationKey string `json:"verification_key"`
	HumanIndex      uint32 `json:"human_index"`
}

// ProofError describes why a proof attempt failed.
type ProofError struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

// ProofMetrics records the timing of a single proof attempt.
// Timestamps are RFC3339.
type ProofMetrics struct {
	ReceivedAt    string `json:"received_at"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at"`
	DurationMS    uint64 `json:"duration_ms"`
	SetupRequired bool   `json:"setup_required"`
}

// ProverResponse is the message published on the result topic.
// Exactly one of Proof or Error is set depending on Status.
type ProverResponse struct {
	RequestID string        `json:"request_id"`
	Status    string        `json:"status"`
	Proof     *ProofData    `json:"proof,omitempty"`
	Error     *ProofError   `json:"error,omitempty"`
	Metrics   *ProofMetrics `json:"metrics,omitempty"`
}

// SuccessResponse builds a success response.
func SuccessResponse(requestID string, proof ProofData, metrics ProofMetrics) *ProverResponse {
	return &ProverResponse{
		RequestID: requestID,
		Status:    StatusSuccess,
		Proof:     &proof,
		Metrics:   &metrics,
	}
}

// FailedResponse builds a failure response.
func FailedResponse(requestID string, proofErr ProofError, metrics *ProofMetrics) *ProverResponse {
	return &ProverResponse{
		RequestID: requestID,
		Status:    StatusFailed,
		Error:     &proofErr,
		Metrics:   metrics,
	}
}

// TimeoutResponse builds a timeout response.
func TimeoutResponse(requestID, message string, metrics *ProofMetrics) *ProverResponse {
	return &ProverResponse{
		RequestID: requestID,
		Status:    StatusTimeout,
		Error: &ProofError{
			ErrorType: "TimeoutError",
			Message:   message,
		},
		Metrics: metrics,
	}
}
