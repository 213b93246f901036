package recommend

import "resonance/internal/model"

// CombinedFeatures derives the text a post is vectorized on: title,
// overall sentiment, and the action descriptor joined by single spaces.
// Absent fields contribute the empty string, never the "No Data" sentinel
// used in the interaction tables; mixing the two conventions would shift
// similarity weights. Total: every post yields a defined string, even one
// with all three fields missing.
func CombinedFeatures(p model.Post) string {
	return p.Title + " " + p.OverallSentiment + " " + p.ActionDescriptor
}
