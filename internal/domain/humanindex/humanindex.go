// Package humanindex implements the fixed-point human index calculation
// and the wire types exchanged with the prover over Pub/Sub.
//
// All fractional values use a fixed-point scale of 10,000: a value
// x in [0.0, 1.0] is carried as the integer round(x * 10000). The
// formula is computed entirely in uint32 arithmetic so that truncation
// (floor) is structural rather than a rounding-mode choice.
package humanindex

// Scale is the fixed-point scale factor (4 decimal places).
const Scale uint32 = 10_000

// MaxIndex is the ceiling of the computed human index.
const MaxIndex uint32 = 255

// Compute calculates the human index from private verification results
// and public weights.
//
// Formula:
//
//	floor((w1 + w2*recaptcha/10000 + w3*sms + w4*bio) * 255 / 10000)
//
// The weighted sum is accumulated in the 10,000-scale domain first; the
// single conversion out of fixed-point happens at the end, truncating
// toward zero. A zero recaptcha score short-circuits to zero.
func Compute(vr VerificationResults, pi PublicInputs) uint32 {
	if vr.RecaptchaScore == 0 {
		return 0
	}

	sum := pi.W1
	sum += (pi.W2 * vr.RecaptchaScore) / Scale
	sum += pi.W3 * vr.SMSVerified
	sum += pi.W4 * vr.BioVerified

	return (sum * MaxIndex) / Scale
}
