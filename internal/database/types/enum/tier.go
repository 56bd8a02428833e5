package enum

import (
	"errors"
	"fmt"
)

// ErrRankOutOfRange is returned when a rank position falls outside the
// top-ranked band covered by the tier table.
var ErrRankOutOfRange = errors.New("rank position outside tier bands")

// TierBandSize is the number of consecutive rank positions each tier covers.
const TierBandSize = 10

// Tier represents one of the five mythological prestige bands, ordered
// from highest prestige (Olympian, ranks 1-10) to lowest (Mortal, 41-50).
type Tier int

const (
	TierOlympian Tier = iota
	TierTitan
	TierDemigod
	TierHero
	TierMortal
)

// TierCount is the number of tiers; TierCount*TierBandSize bounds the
// ranking at 50 entries.
const TierCount = 5

// tierNames maps tiers to their storage labels.
var tierNames = map[Tier]string{
	TierOlympian: "olympian",
	TierTitan:    "titan",
	TierDemigod:  "demigod",
	TierHero:     "hero",
	TierMortal:   "mortal",
}

// tierTitles maps tiers to the reward title shown on profiles.
var tierTitles = map[Tier]string{
	TierOlympian: "Olympian Champion",
	TierTitan:    "Titan of Engagement",
	TierDemigod:  "Rising Demigod",
	TierHero:     "Celebrated Hero",
	TierMortal:   "Honored Mortal",
}

// tierBadges maps tiers to the badge icon shown next to usernames.
var tierBadges = map[Tier]string{
	TierOlympian: "🏛️",
	TierTitan:    "⚡",
	TierDemigod:  "🔱",
	TierHero:     "🛡️",
	TierMortal:   "🌿",
}

// String returns the storage label for the tier.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Tier(%d)", int(t))
}

// TierString parses a storage label back into a Tier.
func TierString(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: Tier %q", ErrUnknownEnum, s)
}

// Title returns the reward title text for the tier.
func (t Tier) Title() string {
	return tierTitles[t]
}

// Badge returns the badge icon for the tier.
func (t Tier) Badge() string {
	return tierBadges[t]
}

// TierForRank maps a rank position to its tier band. Bands are contiguous
// blocks of TierBandSize positions: 1-10 Olympian, 11-20 Titan, 21-30
// Demigod, 31-40 Hero, 41-50 Mortal.
func TierForRank(position int) (Tier, error) {
	if position < 1 || position > TierCount*TierBandSize {
		return 0, fmt.Errorf("%w: %d", ErrRankOutOfRange, position)
	}

	return Tier((position - 1) / TierBandSize), nil
}
