package metrics

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/multiversx/mx-chain-core-go/core/check"
)

// Sampler draws bounded readings for one emulated server. All kinds of one server
// share a single seeded source guarded by one mutex, so concurrent snapshot builds
// serialize per server and never contend across servers
type Sampler struct {
	mut     sync.Mutex
	rng     *rand.Rand
	profile *Profile
}

// NewSampler creates a sampler over the provided profile with an explicit seed
func NewSampler(profile *Profile, seed int64) (*Sampler, error) {
	if check.IfNil(profile) {
		return nil, errors.New("nil profile")
	}

	return &Sampler{
		rng:     rand.New(rand.NewSource(seed)),
		profile: profile,
	}, nil
}

// Sample draws one value for the provided kind, uniform over the kind's inclusive
// range, rounded to its declared precision
func (sampler *Sampler) Sample(kind Kind) (float64, error) {
	def, found := sampler.profile.Definition(kind)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	sampler.mut.Lock()
	value := sampler.draw(def)
	sampler.mut.Unlock()

	return value, nil
}

// SampleAll draws one value for every declared kind in a single locked pass
func (sampler *Sampler) SampleAll() map[Kind]float64 {
	values := make(map[Kind]float64, len(allKinds))

	sampler.mut.Lock()
	for _, kind := range allKinds {
		def, _ := sampler.profile.Definition(kind)
		values[kind] = sampler.draw(def)
	}
	sampler.mut.Unlock()

	return values
}

func (sampler *Sampler) draw(def Definition) float64 {
	value := def.Min + sampler.rng.Float64()*(def.Max-def.Min)

	return roundTo(value, def.Decimals)
}

// Profile returns the profile this sampler draws from
func (sampler *Sampler) Profile() *Profile {
	return sampler.profile
}

func roundTo(value float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(value)
	}

	pow := math.Pow10(decimals)

	return math.Round(value*pow) / pow
}

// IsInterfaceNil returns true if there is no value under the interface
func (sampler *Sampler) IsInterfaceNil() bool {
	return sampler == nil
}
