package testsCommon

import (
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
)

// RegistryStub -
type RegistryStub struct {
	LookupHandler        func(id string) (*fleet.ServerEntry, error)
	AllIdentitiesHandler func() []string
	CountHandler         func() int
}

// Lookup -
func (stub *RegistryStub) Lookup(id string) (*fleet.ServerEntry, error) {
	if stub.LookupHandler != nil {
		return stub.LookupHandler(id)
	}

	return nil, fleet.ErrServerNotFound
}

// AllIdentities -
func (stub *RegistryStub) AllIdentities() []string {
	if stub.AllIdentitiesHandler != nil {
		return stub.AllIdentitiesHandler()
	}

	return make([]string, 0)
}

// Count -
func (stub *RegistryStub) Count() int {
	if stub.CountHandler != nil {
		return stub.CountHandler()
	}

	return 0
}

// IsInterfaceNil -
func (stub *RegistryStub) IsInterfaceNil() bool {
	return stub == nil
}
