package models

// ClientIdentity carries the pseudonymous request identity derived by the
// identity package. Only hashes ever reach the services or the stores.
type ClientIdentity struct {
	IPHash      string
	Fingerprint string
}

// FeatureSubmission is the POST body for a community feature. Website is
// the honeypot field: it is hidden in the form, so any non-empty value
// marks a bot. ElapsedMs is the client-measured time between form render
// and submit.
type FeatureSubmission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Website     string `json:"website"`
	ElapsedMs   int64  `json:"elapsed_ms"`
}

// ReportRequest flags a community feature for review.
type ReportRequest struct {
	FeatureID string `json:"feature_id"`
	Website   string `json:"website"`
}

// WaitlistRequest signs an email up for launch updates.
type WaitlistRequest struct {
	Email     string `json:"email"`
	Website   string `json:"website"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// DeckRequest describes one deck read: which cards the caller has already
// voted on and the client-persisted rotation step (0..2, advanced on
// every dismissed card).
type DeckRequest struct {
	VotedIDs     []string `json:"voted_ids"`
	RotationStep int      `json:"rotation_step"`
}
