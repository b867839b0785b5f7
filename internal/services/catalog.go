package services

import "github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"

// officialCatalog is the first-party card set. Product copy ships with
// the binary; only community cards live in the database.
var officialCatalog = []models.OfficialFeature{
	{ID: "off-01", Name: "Crash detection alerts", Description: "Automatically notify an emergency contact when a hard impact is detected.", Category: "safety"},
	{ID: "off-02", Name: "Check-in timer", Description: "Set a timer before a risky activity; missing the check-in pings your contacts.", Category: "safety"},
	{ID: "off-03", Name: "Live trip sharing", Description: "Share a live location link with a trusted person for the duration of a trip.", Category: "location"},
	{ID: "off-04", Name: "Offline SOS", Description: "Queue an SOS message that sends the moment any connectivity returns.", Category: "messaging"},
	{ID: "off-05", Name: "Medical ID card", Description: "A lock-screen card with blood type, allergies and emergency contacts.", Category: "health"},
	{ID: "off-06", Name: "Safe-route suggestions", Description: "Prefer well-lit, populated streets when walking at night.", Category: "location"},
	{ID: "off-07", Name: "Fake call escape", Description: "Trigger a realistic incoming call to exit an uncomfortable situation.", Category: "social"},
	{ID: "off-08", Name: "Battery guardian", Description: "Send your last location to contacts before the phone dies.", Category: "location"},
	{ID: "off-09", Name: "Community alerts", Description: "Anonymous heads-up notes about hazards pinned to a map.", Category: "community"},
	{ID: "off-10", Name: "Voice-activated SOS", Description: "A spoken passphrase silently starts recording and alerts contacts.", Category: "safety"},
}

// OfficialCatalog returns the official card set in serving order.
func OfficialCatalog() []models.OfficialFeature {
	out := make([]models.OfficialFeature, len(officialCatalog))
	copy(out, officialCatalog)
	return out
}
