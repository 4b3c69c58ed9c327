package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
)

var log = logger.GetOrCreate("api")

const (
	serviceName        = "Fleet Management Service"
	serviceProduct     = "Integrated Dell Remote Access Controller (emulated)"
	serviceVersion     = "1.6.0"
	serviceRootUUIDKey = "idrac-emulator/service-root"

	psuCapacityWatts = 750
	numPowerSupplies = 2
)

var sensorDisplayNames = map[metrics.Kind]string{
	metrics.KindCPU1Temp:    "CPU1 Temp",
	metrics.KindCPU2Temp:    "CPU2 Temp",
	metrics.KindMemoryTemp:  "Memory Module Temp",
	metrics.KindInletTemp:   "System Board Inlet Temp",
	metrics.KindExhaustTemp: "System Board Exhaust Temp",
	metrics.KindDiskTemp:    "Disk Drive Temp",
	metrics.KindFan1Speed:   "System Board Fan1",
	metrics.KindFan2Speed:   "System Board Fan2",
	metrics.KindFan3Speed:   "System Board Fan3",
}

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	registry       Registry
	username       string
	password       string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress  string
	AuthUsername   string
	AuthPassword   string
	Registry       Registry
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Registry) {
		return nil, errors.New("registry is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}
	if len(args.AuthUsername) == 0 {
		return nil, errors.New("empty auth username")
	}
	if len(args.AuthPassword) == 0 {
		return nil, errors.New("empty auth password")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		registry:       args.Registry,
		username:       args.AuthUsername,
		password:       args.AuthPassword,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	// liveness endpoint stays outside the auth boundary
	s.router.GET("/health", s.handleHealth)

	protected := s.router.Group("/")
	protected.Use(s.authBasic())
	{
		protected.GET("/service-root", s.handleServiceRoot)
		protected.GET("/servers", s.handleServers)
		protected.GET("/servers/:id/thermal", s.handleThermal)
		protected.GET("/servers/:id/power", s.handlePower)
		protected.GET("/metric-definitions", s.handleMetricDefinitions)
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return nil
}

// --- Middlewares ---

// authBasic validates the credentials before any handler touches the registry
func (s *server) authBasic() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || username != s.username || password != s.password {
			log.Debug("rejected request", "path", c.Request.URL.Path, "sender", c.Request.RemoteAddr)
			c.Header("WWW-Authenticate", `Basic realm="iDRAC"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleHealth(c *gin.Context) {
	type healthResponse struct {
		Status            string `json:"status"`
		RegisteredServers int    `json:"registeredServers"`
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:            "running",
		RegisteredServers: s.registry.Count(),
	})
}

func (s *server) handleServiceRoot(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceRootResponse{
		Name:        serviceName,
		Product:     serviceProduct,
		Version:     serviceVersion,
		UUID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(serviceRootUUIDKey)).String(),
		ServerCount: s.registry.Count(),
		Links: ServiceLinks{
			Servers: "/servers",
			Health:  "/health",
		},
	})
}

func (s *server) handleServers(c *gin.Context) {
	ids := s.registry.AllIdentities()
	members := make([]ServerSummary, 0, len(ids))
	for _, id := range ids {
		entry, err := s.registry.Lookup(id)
		if err != nil {
			log.Warn("listed server missing from registry", "id", id, "error", err)
			continue
		}

		identity := entry.Identity()
		members = append(members, ServerSummary{
			ID:         identity.ID,
			UUID:       identity.UUID,
			Model:      identity.Model,
			ServiceTag: identity.ServiceTag,
			Links: ServerLinks{
				Thermal: "/servers/" + identity.ID + "/thermal",
				Power:   "/servers/" + identity.ID + "/power",
			},
		})
	}

	c.JSON(http.StatusOK, ServerCollectionResponse{
		Count:   len(members),
		Members: members,
	})
}

func (s *server) handleThermal(c *gin.Context) {
	entry, err := s.registry.Lookup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
		return
	}

	c.JSON(http.StatusOK, thermalResponseFrom(entry.Snapshot()))
}

func (s *server) handlePower(c *gin.Context) {
	entry, err := s.registry.Lookup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
		return
	}

	c.JSON(http.StatusOK, powerResponseFrom(entry.Snapshot()))
}

func (s *server) handleMetricDefinitions(c *gin.Context) {
	ids := s.registry.AllIdentities()
	if len(ids) == 0 {
		c.JSON(http.StatusOK, MetricDefinitionsResponse{Count: 0, Members: []MetricDefinitionEntry{}})
		return
	}

	entry, err := s.registry.Lookup(ids[0])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	readings := entry.Snapshot().Readings()
	members := make([]MetricDefinitionEntry, 0, len(readings))
	for _, reading := range readings {
		def := reading.Definition
		members = append(members, MetricDefinitionEntry{
			ID:              string(def.Kind),
			Name:            def.ExportName,
			MetricType:      string(def.Category),
			Units:           def.Unit,
			MinReadingRange: def.Min,
			MaxReadingRange: def.Max,
			Precision:       def.Decimals,
		})
	}

	c.JSON(http.StatusOK, MetricDefinitionsResponse{
		Count:   len(members),
		Members: members,
	})
}

// --- Response builders ---

func okStatus() StatusBlock {
	return StatusBlock{State: "Enabled", Health: "OK"}
}

func displayName(kind metrics.Kind) string {
	name, found := sensorDisplayNames[kind]
	if !found {
		return string(kind)
	}

	return name
}

func thermalResponseFrom(snapshot fleet.Snapshot) ThermalResponse {
	thermalReadings := snapshot.CategoryReadings(metrics.CategoryThermal)
	temperatures := make([]TemperatureReading, 0, len(thermalReadings))
	for _, reading := range thermalReadings {
		temperatures = append(temperatures, TemperatureReading{
			Name:                      displayName(reading.Definition.Kind),
			ReadingCelsius:            reading.Value,
			UpperThresholdNonCritical: reading.Definition.Max + 5,
			UpperThresholdCritical:    reading.Definition.Max + 10,
			UpperThresholdFatal:       reading.Definition.Max + 15,
			Status:                    okStatus(),
		})
	}

	coolingReadings := snapshot.CategoryReadings(metrics.CategoryCooling)
	fans := make([]FanReading, 0, len(coolingReadings))
	for _, reading := range coolingReadings {
		fans = append(fans, FanReading{
			Name:                      displayName(reading.Definition.Kind),
			ReadingRPM:                int(reading.Value),
			LowerThresholdNonCritical: int(reading.Definition.Min) - 500,
			LowerThresholdCritical:    int(reading.Definition.Min) - 1000,
			Status:                    okStatus(),
		})
	}

	return ThermalResponse{
		ID:           "Thermal",
		Name:         "Thermal",
		Temperatures: temperatures,
		Fans:         fans,
	}
}

func powerResponseFrom(snapshot fleet.Snapshot) PowerResponse {
	powerReadings := snapshot.CategoryReadings(metrics.CategoryPower)
	controls := make([]PowerControl, 0, len(powerReadings))
	var consumedWatts float64
	for _, reading := range powerReadings {
		consumedWatts = reading.Value
		controls = append(controls, PowerControl{
			Name:                "System Power Control",
			PowerConsumedWatts:  reading.Value,
			PowerRequestedWatts: reading.Value + 50,
			PowerCapacityWatts:  psuCapacityWatts,
			PowerMetrics: PowerMetrics{
				MinConsumedWatts:     reading.Definition.Min,
				MaxConsumedWatts:     reading.Definition.Max,
				AverageConsumedWatts: (reading.Definition.Min + reading.Definition.Max) / 2,
			},
		})
	}

	supplies := make([]PowerSupply, 0, numPowerSupplies)
	for i := 1; i <= numPowerSupplies; i++ {
		supplies = append(supplies, PowerSupply{
			Name:                 fmt.Sprintf("PS%d Status", i),
			PowerCapacityWatts:   psuCapacityWatts,
			LastPowerOutputWatts: consumedWatts / 2,
			Status:               okStatus(),
		})
	}

	return PowerResponse{
		ID:            "Power",
		Name:          "Power",
		PowerControl:  controls,
		PowerSupplies: supplies,
	}
}
