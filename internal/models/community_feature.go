package models

import "time"

// CommunityFeature is a user-submitted idea card. Allowed is the
// automatic moderation gate: false hides the card from the public deck
// and places it in the review queue. Greenlit is the admin override:
// true forces visibility, false is a permanent rejection, nil defers to
// Allowed. Once set, Greenlit is terminal.
type CommunityFeature struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	ReportedCount int       `json:"reported_count"`
	Allowed       bool      `json:"allowed"`
	Greenlit      *bool     `json:"greenlit,omitempty"`
}

// Visible reports whether the feature belongs in the public deck.
func (f CommunityFeature) Visible() bool {
	if f.Greenlit != nil {
		return *f.Greenlit
	}
	return f.Allowed
}

// OfficialFeature is a first-party card. The pipeline never writes these;
// it only blends them with community cards at serve time.
type OfficialFeature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// WaitlistEntry is a signed-up email, keyed by its canonicalized form.
type WaitlistEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
