package deck

import (
	"math/rand"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

// NewDefaultScheduler wires the shipped deck policy with a time-seeded
// source. Tests construct NewScheduler directly with a seeded one.
func NewDefaultScheduler(conf *structures.Config) *Scheduler {
	return NewScheduler(conf.Deck, rand.New(rand.NewSource(time.Now().UnixNano())))
}
