// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package abtest routes traffic between prompt version variants and
// determines test winners from execution metrics.
package abtest

import (
	"errors"
	"math/rand"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// ErrNoVariants is returned when selecting from a test with no variants.
var ErrNoVariants = errors.New("test has no variants")

// Assignment is the result of routing one request.
type Assignment struct {
	Index   int
	Variant types.Variant
}

// Selector picks variants by weighted random draw. Weights are
// normalized to a 0-100 scale on every draw, so they need not sum
// to 100.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a weighted selector with a given seed.
// Pass 0 for a random seed based on the global source.
// Note: Uses math/rand (not crypto/rand) as traffic splitting doesn't require cryptographic randomness.
func NewSelector(seed int64) *Selector {
	if seed == 0 {
		// #nosec G404 -- traffic-split distribution doesn't need crypto randomness
		return &Selector{rng: rand.New(rand.NewSource(rand.Int63()))}
	}
	// #nosec G404 -- traffic-split distribution doesn't need crypto randomness
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Select chooses a variant for one request. The draw is in [0, 100)
// against cumulative normalized weights; if rounding leaves the walk
// short, the last variant takes the remainder.
func (s *Selector) Select(test *types.ABTest) (Assignment, error) {
	if test == nil || len(test.Variants) == 0 {
		return Assignment{}, ErrNoVariants
	}

	var totalWeight float64
	for _, v := range test.Variants {
		totalWeight += v.Weight
	}

	r := s.rng.Float64() * 100
	var cumulative float64
	for i, v := range test.Variants {
		share := 0.0
		if totalWeight > 0 {
			share = v.Weight / totalWeight * 100
		}
		cumulative += share
		if r <= cumulative {
			return Assignment{Index: i, Variant: v}, nil
		}
	}

	last := len(test.Variants) - 1
	return Assignment{Index: last, Variant: test.Variants[last]}, nil
}
