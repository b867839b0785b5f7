package models

// DeckSource tags where a served card came from.
type DeckSource string

const (
	SourceOfficial  DeckSource = "official"
	SourceCommunity DeckSource = "community"
)

// DeckItem is a read-only projection of an official or community feature
// in the serving order. Recomputed per session, no lifecycle of its own.
type DeckItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Source      DeckSource `json:"source"`
}
