package export

import (
	"context"

	"github.com/virtbmc/idrac-emulator/services/emulator/common"
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
)

// Registry defines the fleet access needed while collecting export snapshots
type Registry interface {
	Lookup(id string) (*fleet.ServerEntry, error)
	AllIdentities() []string
	IsInterfaceNil() bool
}

// Ingester defines the interface for pushing metric batches to the ingestion backend
type Ingester interface {
	// Submit sends one batch of metric points. A rejected batch is signalled through the
	// returned error and is never retried by the ingester itself.
	Submit(ctx context.Context, points []common.MetricPoint) error

	IsInterfaceNil() bool
}
