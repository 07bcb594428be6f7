package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// DefaultTestSize is the share of rows held out for testing.
const DefaultTestSize = 0.2

// TrainTestSplit shuffles the rows of f and splits them into a train and a
// test frame. The test frame gets ceil(testSize*n) rows. A zero seed draws the
// shuffle from the clock.
func TrainTestSplit(f *Frame, testSize float64, seed uint64) (train, test *Frame, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	n := f.Len()
	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows with test size %v", errNotEnoughRows, n, testSize)
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	return f.Subset(perm[nTest:]), f.Subset(perm[:nTest]), nil
}
