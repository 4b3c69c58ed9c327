package snmp

import (
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
)

// Registry defines the read-only fleet access the agent relies on
type Registry interface {
	// Lookup returns the server entry registered under the provided id
	Lookup(id string) (*fleet.ServerEntry, error)

	// AllIdentities returns the registered server ids in insertion order
	AllIdentities() []string

	IsInterfaceNil() bool
}
