// Package deck produces the single serving order that blends official
// cards with community submissions. The scheduler only orders; hiding
// reported content is the moderation gate's job, so heavily reported
// items sink in the shuffle but are never dropped here.
package deck

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

type Scheduler struct {
	conf structures.DeckConfig

	// rand.Rand is not safe for concurrent use, and the source is
	// injected so tests can seed exact orderings.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewScheduler(conf structures.DeckConfig, rng *rand.Rand) *Scheduler {
	return &Scheduler{conf: conf, rng: rng}
}

// Build composes one ordered deck for a session. Already-voted IDs are
// excluded from both source lists; community items are weighted-shuffled
// with report-count bias, interleaved recent/older, then spliced into
// the official order at every SlotCadence-th slot (phase set by the
// client's persisted rotation step), capped at floor(official/2)+1.
func (s *Scheduler) Build(official []models.OfficialFeature, community []models.CommunityFeature, votedIDs []string, rotationStep int, now time.Time) []models.DeckItem {
	voted := make(map[string]struct{}, len(votedIDs))
	for _, id := range votedIDs {
		voted[id] = struct{}{}
	}

	officials := make([]models.OfficialFeature, 0, len(official))
	for _, f := range official {
		if _, ok := voted[f.ID]; !ok {
			officials = append(officials, f)
		}
	}

	var recent, older []models.CommunityFeature
	cutoff := now.Add(-s.conf.RecentAge)
	for _, f := range community {
		if _, ok := voted[f.ID]; ok {
			continue
		}
		if f.CreatedAt.After(cutoff) {
			recent = append(recent, f)
		} else {
			older = append(older, f)
		}
	}

	queue := interleave(s.weightedShuffle(recent), s.weightedShuffle(older))

	cadence := s.conf.SlotCadence
	if cadence < 2 {
		cadence = 2
	}
	quota := len(officials)/2 + 1
	rotation := ((rotationStep % cadence) + cadence) % cadence

	out := make([]models.DeckItem, 0, len(officials)+quota)
	pos := rotation
	ci, inserted := 0, 0
	for oi := 0; oi < len(officials); {
		pos++
		if pos%cadence == 0 && ci < len(queue) && inserted < quota {
			out = append(out, communityCard(queue[ci]))
			ci++
			inserted++
			continue
		}
		out = append(out, officialCard(officials[oi]))
		oi++
	}

	// Officials ran out first: let one more community card through.
	if inserted < quota && ci < len(queue) {
		out = append(out, communityCard(queue[ci]))
	}

	return out
}

// weightedShuffle orders items by the key r^(1/w) descending, with
// w = max(minWeight, 1/(1+reportedCount)). More reports means a lower
// weight and a tendency toward the back, without ever guaranteeing it.
func (s *Scheduler) weightedShuffle(items []models.CommunityFeature) []models.CommunityFeature {
	type keyed struct {
		item models.CommunityFeature
		key  float64
	}

	s.mu.Lock()
	ks := make([]keyed, len(items))
	for i, it := range items {
		w := 1.0 / (1.0 + float64(it.ReportedCount))
		if w < s.conf.MinWeight {
			w = s.conf.MinWeight
		}
		ks[i] = keyed{item: it, key: math.Pow(s.rng.Float64(), 1.0/w)}
	}
	s.mu.Unlock()

	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key > ks[j].key })

	out := make([]models.CommunityFeature, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

// interleave alternates two lists one-for-one, appending whatever is
// left of the longer one. Balances freshness against not starving older
// submissions.
func interleave(a, b []models.CommunityFeature) []models.CommunityFeature {
	out := make([]models.CommunityFeature, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

func officialCard(f models.OfficialFeature) models.DeckItem {
	return models.DeckItem{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Source:      models.SourceOfficial,
	}
}

func communityCard(f models.CommunityFeature) models.DeckItem {
	return models.DeckItem{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Source:      models.SourceCommunity,
	}
}
