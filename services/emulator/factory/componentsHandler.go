package factory

import (
	"context"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/virtbmc/idrac-emulator/common"
	"github.com/virtbmc/idrac-emulator/services/emulator/api"
	"github.com/virtbmc/idrac-emulator/services/emulator/config"
	"github.com/virtbmc/idrac-emulator/services/emulator/export"
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
	"github.com/virtbmc/idrac-emulator/services/emulator/snmp"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	registry       *fleet.Registry
	apiServer      Server
	snmpServer     Server
	publisher      Publisher
	exportInterval time.Duration
	mutCancel      sync.Mutex
	cancel         func()
}

// NewComponentsHandler wires all emulator components from the provided configuration
func NewComponentsHandler(cfg config.Config) (*componentsHandler, error) {
	profile, err := loadProfile(cfg.Fleet.ProfileFile)
	if err != nil {
		return nil, err
	}

	registry, err := fleet.NewRegistry(fleet.ArgsRegistry{
		Count:     cfg.Fleet.ServerCount,
		IDPattern: cfg.Fleet.IDPattern,
		Seed:      cfg.Fleet.Seed,
		Profile:   profile,
	})
	if err != nil {
		return nil, err
	}

	apiServer, err := api.NewServer(api.ArgsWebServer{
		ListenAddress:  cfg.API.ListenAddress,
		AuthUsername:   cfg.API.Username,
		AuthPassword:   cfg.API.Password,
		Registry:       registry,
		GeneralHandler: api.CORSMiddleware,
	})
	if err != nil {
		return nil, err
	}

	snmpServer, err := snmp.NewSNMPServer(snmp.ArgsSNMPServer{
		ListenAddress:  cfg.SNMP.ListenAddress,
		ReadCommunity:  cfg.SNMP.ReadCommunity,
		WriteCommunity: cfg.SNMP.WriteCommunity,
		V3User:         cfg.SNMP.V3User,
		Registry:       registry,
	})
	if err != nil {
		return nil, err
	}

	handler := &componentsHandler{
		registry:       registry,
		apiServer:      apiServer,
		snmpServer:     snmpServer,
		exportInterval: cfg.Export.Interval,
	}

	if cfg.Export.Enabled {
		ingester := export.NewHTTPIngester(cfg.Export.Endpoint, cfg.Export.APIKey, cfg.Export.Namespace, cfg.Export.Timeout)
		handler.publisher, err = export.NewPublisher(export.ArgsPublisher{
			Registry:  registry,
			Ingester:  ingester,
			BatchSize: cfg.Export.BatchSize,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("metrics export is disabled, no publisher was created")
	}

	return handler, nil
}

func loadProfile(profileFile string) (*metrics.Profile, error) {
	if len(profileFile) == 0 {
		return metrics.DefaultProfile()
	}

	log.Debug("loading metric profile", "file", profileFile)

	return metrics.LoadProfile(profileFile)
}

// GetRegistry returns the fleet registry component
func (ch *componentsHandler) GetRegistry() *fleet.Registry {
	return ch.registry
}

// GetAPIServer returns the REST facade component
func (ch *componentsHandler) GetAPIServer() Server {
	return ch.apiServer
}

// GetSNMPServer returns the SNMP agent component
func (ch *componentsHandler) GetSNMPServer() Server {
	return ch.snmpServer
}

// GetPublisher returns the metrics export component, nil when export is disabled
func (ch *componentsHandler) GetPublisher() Publisher {
	return ch.publisher
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	ch.apiServer.Start()
	ch.snmpServer.Start()

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	if !check.IfNil(ch.publisher) {
		common.CronJobStarter(ctx, ch.publisher.Process, ch.exportInterval)
	}
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel == nil {
		return
	}

	ch.cancel()
	ch.cancel = nil

	_ = ch.apiServer.Close()
	_ = ch.snmpServer.Close()
}
