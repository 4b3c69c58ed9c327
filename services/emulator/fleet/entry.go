package fleet

import (
	"errors"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
)

// ServerIdentity holds the fixed descriptive attributes of one emulated server
type ServerIdentity struct {
	Ordinal    int
	ID         string
	UUID       string
	Model      string
	ServiceTag string
}

// ServerEntry binds one server identity to its private metric sampler
type ServerEntry struct {
	identity ServerIdentity
	sampler  *metrics.Sampler
}

// NewServerEntry creates a server entry. The sampler must belong to this entry
// alone, entries never share sampling state
func NewServerEntry(identity ServerIdentity, sampler *metrics.Sampler) (*ServerEntry, error) {
	if len(identity.ID) == 0 {
		return nil, errors.New("empty server id")
	}
	if check.IfNil(sampler) {
		return nil, errors.New("nil sampler")
	}

	return &ServerEntry{
		identity: identity,
		sampler:  sampler,
	}, nil
}

// Identity returns the fixed identity of this server
func (entry *ServerEntry) Identity() ServerIdentity {
	return entry.identity
}

// ID returns the server id
func (entry *ServerEntry) ID() string {
	return entry.identity.ID
}

// Snapshot builds a fresh, complete snapshot of all declared kinds
func (entry *ServerEntry) Snapshot() Snapshot {
	values := entry.sampler.SampleAll()

	return newSnapshot(entry.identity.ID, entry.sampler.Profile(), values)
}

// IsInterfaceNil returns true if there is no value under the interface
func (entry *ServerEntry) IsInterfaceNil() bool {
	return entry == nil
}
