package ai

import "math"

// Confidence baselines. Heuristic constants carried over from the
// product's calibration; preserved exactly, no ground-truth data exists
// to retune them.
const (
	baselineFailed    = 0.7 // failed primary still yields partial data downstream
	baselineSucceeded = 0.8
	agreementFloor    = 0.6
	agreementWeight   = 0.4
)

// ConfidenceScore derives a single confidence value in [0,1], rounded to
// two decimals, from a single- or dual-provider run. Pass nil secondary
// for single-provider runs.
//
// Dual-provider with both succeeded: 0.6 + agreementRatio*0.4, where
// agreement is computed over the primary's field set; perfect agreement
// maps to 1.0, total disagreement to 0.6. With zero fields the baseline
// rule applies instead. A failed secondary yields 0.7: a verification
// attempt that half-failed is worth less than one never attempted.
func ConfidenceScore(primary ProviderResponse, secondary *ProviderResponse) float64 {
	confidence := baselineFailed
	if primary.Success {
		confidence = baselineSucceeded
	}

	if secondary != nil {
		if secondary.Success {
			reconciliation := Reconcile(primary, *secondary)
			totalFields := 0
			if primary.Data != nil && !primary.Data.IsGuestForm() {
				totalFields = len(primary.Data.Single)
			}
			if totalFields > 0 {
				agreementRatio := float64(totalFields-len(reconciliation.FieldsToReview)) / float64(totalFields)
				// review flags can include secondary-only fields, so the
				// ratio needs clamping to keep the score inside [0,1]
				if agreementRatio < 0 {
					agreementRatio = 0
				}
				confidence = agreementFloor + agreementRatio*agreementWeight
			}
		} else {
			confidence = baselineFailed
		}
	}

	return math.Round(confidence*100) / 100
}
