package fleet

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
)

var log = logger.GetOrCreate("fleet")

const modelName = "PowerEdge R740"

const serviceTagAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
const serviceTagLength = 7

// ArgsRegistry is the DTO used to create a fleet registry
type ArgsRegistry struct {
	Count     int
	IDPattern string
	Seed      int64
	Profile   *metrics.Profile
}

// Registry holds the emulated fleet. It is populated once at construction and
// read-only afterwards, so lookups and iteration take no locks
type Registry struct {
	entries []*ServerEntry
	byID    map[string]*ServerEntry
}

// NewRegistry creates and populates a registry with args.Count servers. Each
// server gets its own sampler, seeded from the base seed and the server id so
// streams stay stable and decorrelated across the fleet
func NewRegistry(args ArgsRegistry) (*Registry, error) {
	if check.IfNil(args.Profile) {
		return nil, errors.New("nil profile")
	}
	if args.Count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidServerCount, args.Count)
	}
	err := checkIDPattern(args.IDPattern)
	if err != nil {
		return nil, err
	}

	baseSeed := args.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	registry := &Registry{
		entries: make([]*ServerEntry, 0, args.Count),
		byID:    make(map[string]*ServerEntry, args.Count),
	}
	for ordinal := 1; ordinal <= args.Count; ordinal++ {
		id := fmt.Sprintf(args.IDPattern, ordinal)
		_, exists := registry.byID[id]
		if exists {
			return nil, fmt.Errorf("%w: pattern '%s' repeats id '%s'", ErrInvalidIDPattern, args.IDPattern, id)
		}

		sampler, errSampler := metrics.NewSampler(args.Profile, baseSeed^int64(hashID(id)))
		if errSampler != nil {
			return nil, errSampler
		}

		identity := ServerIdentity{
			Ordinal:    ordinal,
			ID:         id,
			UUID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String(),
			Model:      modelName,
			ServiceTag: serviceTagFor(id),
		}
		entry, errEntry := NewServerEntry(identity, sampler)
		if errEntry != nil {
			return nil, errEntry
		}

		registry.entries = append(registry.entries, entry)
		registry.byID[id] = entry
	}

	log.Debug("fleet registry populated",
		"servers", args.Count,
		"first", registry.entries[0].ID(),
		"last", registry.entries[args.Count-1].ID())

	return registry, nil
}

func checkIDPattern(pattern string) error {
	if len(pattern) == 0 {
		return fmt.Errorf("%w: empty pattern", ErrInvalidIDPattern)
	}

	// fmt reports verb/operand mismatches inside the formatted output
	formatted := fmt.Sprintf(pattern, 1)
	if strings.Contains(formatted, "%!") {
		return fmt.Errorf("%w: '%s' needs exactly one integer verb", ErrInvalidIDPattern, pattern)
	}

	return nil
}

func hashID(id string) uint64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(id))

	return hasher.Sum64()
}

func serviceTagFor(id string) string {
	value := hashID(id)
	tag := make([]byte, serviceTagLength)
	for i := range tag {
		tag[i] = serviceTagAlphabet[value%uint64(len(serviceTagAlphabet))]
		value /= uint64(len(serviceTagAlphabet))
	}

	return string(tag)
}

// Lookup returns the server entry registered under the provided id
func (registry *Registry) Lookup(id string) (*ServerEntry, error) {
	entry, found := registry.byID[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}

	return entry, nil
}

// AllIdentities returns the registered server ids in insertion order
func (registry *Registry) AllIdentities() []string {
	ids := make([]string, 0, len(registry.entries))
	for _, entry := range registry.entries {
		ids = append(ids, entry.ID())
	}

	return ids
}

// Count returns the number of registered servers
func (registry *Registry) Count() int {
	return len(registry.entries)
}

// IsInterfaceNil returns true if there is no value under the interface
func (registry *Registry) IsInterfaceNil() bool {
	return registry == nil
}
