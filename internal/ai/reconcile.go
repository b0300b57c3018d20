package ai

import "sort"

// Reconcile merges two single-document extraction results. The primary
// is always trusted in a disagreement; the secondary exists purely to
// surface uncertainty for human review, not to outvote the primary.
//
// Rules:
//   - primary failed: empty result, nothing to reconcile against
//   - secondary failed: primary's data stands unreconciled, no flags
//   - value disagreement (strict inequality, including null vs
//     non-null): keep primary's value, flag the field
//   - field only in secondary: adopt it and still flag it, since its
//     provenance is unverified by the primary source
//   - equal values: never flagged
//
// Guest-form payloads are not diffed field-by-field; their downstream
// semantics differ, so either side holding one yields the primary data
// unchanged with no flags.
func Reconcile(primary, secondary ProviderResponse) ReconciliationResult {
	finalData := ExtractedData{}
	fieldsToReview := []string{}

	if !primary.Success || primary.Data == nil || primary.Data.IsGuestForm() {
		return ReconciliationResult{FinalData: finalData, FieldsToReview: fieldsToReview}
	}

	for k, v := range primary.Data.Single {
		finalData[k] = v
	}

	if !secondary.Success || secondary.Data == nil || secondary.Data.IsGuestForm() {
		return ReconciliationResult{FinalData: finalData, FieldsToReview: fieldsToReview}
	}

	keys := unionKeys(primary.Data.Single, secondary.Data.Single)
	for _, key := range keys {
		primaryValue, inPrimary := primary.Data.Single[key]
		secondaryValue, inSecondary := secondary.Data.Single[key]

		switch {
		case inPrimary && inSecondary && primaryValue != secondaryValue:
			fieldsToReview = append(fieldsToReview, key)
		case !inPrimary && inSecondary:
			finalData[key] = secondaryValue
			fieldsToReview = append(fieldsToReview, key)
		}
	}

	return ReconciliationResult{FinalData: finalData, FieldsToReview: fieldsToReview}
}

func unionKeys(a, b ExtractedData) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
