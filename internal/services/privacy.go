package services

// MinRespondentsForDisplay is the enforced privacy threshold: aggregate
// metrics for a survey or team are withheld until at least this many
// complete responses exist. All user-facing copy derives from this constant.
const MinRespondentsForDisplay = 7

// MeetsPrivacyThreshold reports whether computed metrics may be disclosed
// for the given number of complete responses. While it returns false, only
// the response count itself may be shown.
func MeetsPrivacyThreshold(completeResponses int) bool {
	return completeResponses >= MinRespondentsForDisplay
}

// ResponsesNeeded returns how many more complete responses are required
// before metrics unlock, never below zero.
func ResponsesNeeded(completeResponses int) int {
	if completeResponses >= MinRespondentsForDisplay {
		return 0
	}
	return MinRespondentsForDisplay - completeResponses
}
