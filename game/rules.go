package game

import (
	"math/rand"
	"slices"

	"github.com/bas390/Spyfall/catalog"
)

// The functions in this file are the game rules proper. The coordinator and
// the local engine both call them, so online and pass-and-play games behave
// identically given the same random source.

// assignSpies picks spyCount distinct player indices in [0, playerCount),
// uniformly without replacement. Returned ascending so the assignment is a
// set, not an ordering.
func assignSpies(rng *rand.Rand, playerCount, spyCount int) []int {
	spies := rng.Perm(playerCount)[:spyCount]
	slices.Sort(spies)
	return spies
}

func pickLocation(rng *rand.Rand, locs []catalog.Location) catalog.Location {
	return locs[rng.Intn(len(locs))]
}

// tallyVotes finds the index with the most votes. More than one index at the
// max is a tie; ties never auto-resolve, the round must be replayed.
func tallyVotes(votes []int) (leading int, tie bool) {
	max := -1
	count := 0
	for i, v := range votes {
		switch {
		case v > max:
			max = v
			leading = i
			count = 1
		case v == max:
			count++
		}
	}
	return leading, count > 1
}
