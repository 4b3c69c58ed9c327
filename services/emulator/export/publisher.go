package export

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/virtbmc/idrac-emulator/services/emulator/common"
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
	"golang.org/x/sync/errgroup"
)

const (
	dimensionServerID   = "ServerID"
	dimensionMetricType = "MetricType"

	unitPercent = "Percent"
	unitNone    = "None"

	maxConcurrentSnapshots = 8
)

var log = logger.GetOrCreate("export")

// ArgsPublisher holds the arguments needed to create a publisher
type ArgsPublisher struct {
	Registry  Registry
	Ingester  Ingester
	BatchSize int
}

// publisher flattens fleet snapshots into metric points and pushes them in bounded chunks
type publisher struct {
	registry  Registry
	ingester  Ingester
	batchSize int
	enabled   atomic.Bool
	busy      atomic.Bool
}

// NewPublisher creates a new publisher instance, enabled by default
func NewPublisher(args ArgsPublisher) (*publisher, error) {
	if check.IfNil(args.Registry) {
		return nil, errors.New("nil fleet registry")
	}
	if check.IfNil(args.Ingester) {
		return nil, errors.New("nil ingester")
	}
	if args.BatchSize < 1 {
		return nil, fmt.Errorf("invalid batch size %d, it should be at least 1", args.BatchSize)
	}

	p := &publisher{
		registry:  args.Registry,
		ingester:  args.Ingester,
		batchSize: args.BatchSize,
	}
	p.enabled.Store(true)

	return p, nil
}

// SetEnabled toggles exporting at runtime. A disabled publisher keeps its schedule
// but gives up at the start of each cycle, before touching the registry.
func (p *publisher) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Process collects one fresh snapshot per server and submits the flattened points.
// A cycle that finds the previous one still running gives up immediately instead of queueing.
func (p *publisher) Process(ctx context.Context) {
	if !p.enabled.Load() {
		log.Debug("export is disabled, skipping this cycle")
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		log.Warn("previous export cycle still in progress, skipping this one")
		return
	}
	defer p.busy.Store(false)

	points := p.collect()
	if len(points) == 0 {
		return
	}

	p.submitChunks(ctx, points)
}

func (p *publisher) collect() []common.MetricPoint {
	ids := p.registry.AllIdentities()
	log.Debug("waking up to export fleet metrics", "servers", len(ids))

	snapshots := make([]*fleet.Snapshot, len(ids))
	group := errgroup.Group{}
	group.SetLimit(maxConcurrentSnapshots)
	for idx, id := range ids {
		idx, id := idx, id
		group.Go(func() error {
			entry, err := p.registry.Lookup(id)
			if err != nil {
				log.Warn("server missing from the registry during collection", "id", id, "error", err)
				return nil
			}

			snapshot := entry.Snapshot()
			snapshots[idx] = &snapshot
			return nil
		})
	}
	_ = group.Wait()

	points := make([]common.MetricPoint, 0, len(ids))
	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}

		for _, reading := range snapshot.Readings() {
			points = append(points, common.MetricPoint{
				MetricName: reading.Definition.ExportName,
				Value:      reading.Value,
				Unit:       exportUnit(reading.Definition.Unit),
				Timestamp:  snapshot.TakenAt(),
				Dimensions: []common.Dimension{
					{Name: dimensionServerID, Value: snapshot.ServerID()},
					{Name: dimensionMetricType, Value: string(reading.Definition.Category)},
				},
			})
		}
	}

	return points
}

func (p *publisher) submitChunks(ctx context.Context, points []common.MetricPoint) {
	sentChunks := 0
	failedChunks := 0
	for start := 0; start < len(points); start += p.batchSize {
		if ctx.Err() != nil {
			log.Debug("context closed, abandoning the remaining metric chunks", "remaining_points", len(points)-start)
			return
		}

		end := start + p.batchSize
		if end > len(points) {
			end = len(points)
		}

		// an in-flight chunk is allowed to finish even while the emulator shuts down,
		// the ingester client timeout keeps it bounded
		err := p.ingester.Submit(context.WithoutCancel(ctx), points[start:end])
		if err != nil {
			failedChunks++
			log.Warn("failed to submit a metrics chunk, its points are discarded", "from", start, "to", end, "error", err)
			continue
		}

		sentChunks++
	}

	log.Debug("export cycle finished", "points", len(points), "chunks_sent", sentChunks, "chunks_failed", failedChunks)
}

func exportUnit(unit string) string {
	if unit == unitPercent {
		return unit
	}

	return unitNone
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *publisher) IsInterfaceNil() bool {
	return p == nil
}
