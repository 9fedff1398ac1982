package harness

import (
	"fmt"

	"github.com/0xer-org/zk/internal/domain/humanindex"
)

// VerifyResults checks that every expected request received a
// successful result carrying the expected human index. It returns the
// number of results that verified, and the first discrepancy as an
// error.
func VerifyResults(expected map[string]uint32, results []humanindex.ProverResponse) (int, error) {
	byRequest := make(map[string]humanindex.ProverResponse, len(results))
	for _, resp := range results {
		byRequest[resp.RequestID] = resp
	}

	verified := 0
	for requestID, want := range expected {
		resp, ok := byRequest[requestID]
		if !ok {
			return verified, fmt.Errorf("%w: no result for request %s", ErrVerification, requestID)
		}
		if resp.Status != humanindex.StatusSuccess {
			return verified, fmt.Errorf("%w: request %s finished with status %s", ErrVerification, requestID, resp.Status)
		}
		if resp.Proof == nil {
			return verified, fmt.Errorf("%w: request %s succeeded without proof data", ErrVerification, requestID)
		}
		if resp.Proof.HumanIndex != want {
			return verified, fmt.Errorf("%w: request %s computed human index %d, expected %d",
				ErrVerification, requestID, resp.Proof.HumanIndex, want)
		}
		verified++
	}
	return verified, nil
}
