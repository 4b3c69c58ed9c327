package factory

import "context"

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Publisher defines the metrics export loop operations
type Publisher interface {
	Process(ctx context.Context)
	IsInterfaceNil() bool
}
