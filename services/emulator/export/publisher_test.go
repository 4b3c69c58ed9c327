package export

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtbmc/idrac-emulator/services/emulator/common"
	"github.com/virtbmc/idrac-emulator/services/emulator/fleet"
	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
	"github.com/virtbmc/idrac-emulator/services/emulator/testsCommon"
)

func createTestRegistry(t *testing.T, count int) *fleet.Registry {
	profile, _ := metrics.DefaultProfile()
	registry, err := fleet.NewRegistry(fleet.ArgsRegistry{
		Count:     count,
		IDPattern: "DELL-SRV-%03d",
		Seed:      42,
		Profile:   profile,
	})
	require.Nil(t, err)

	return registry
}

func createTestPublisherArgs(t *testing.T) ArgsPublisher {
	return ArgsPublisher{
		Registry:  createTestRegistry(t, 3),
		Ingester:  &testsCommon.IngesterStub{},
		BatchSize: 20,
	}
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	t.Run("nil registry should error", func(t *testing.T) {
		args := createTestPublisherArgs(t)
		args.Registry = nil

		publisherInstance, err := NewPublisher(args)

		assert.Nil(t, publisherInstance)
		assert.True(t, publisherInstance.IsInterfaceNil())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil fleet registry")
	})
	t.Run("nil ingester should error", func(t *testing.T) {
		args := createTestPublisherArgs(t)
		args.Ingester = nil

		publisherInstance, err := NewPublisher(args)

		assert.Nil(t, publisherInstance)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil ingester")
	})
	t.Run("invalid batch size should error", func(t *testing.T) {
		args := createTestPublisherArgs(t)
		args.BatchSize = 0

		publisherInstance, err := NewPublisher(args)

		assert.Nil(t, publisherInstance)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid batch size")
	})
	t.Run("should work", func(t *testing.T) {
		publisherInstance, err := NewPublisher(createTestPublisherArgs(t))

		assert.NotNil(t, publisherInstance)
		assert.False(t, publisherInstance.IsInterfaceNil())
		assert.Nil(t, err)
	})
}

func TestPublisher_ProcessExportsTheWholeFleet(t *testing.T) {
	t.Parallel()

	var mut sync.Mutex
	chunks := make([][]common.MetricPoint, 0)

	registry := createTestRegistry(t, 3)
	args := ArgsPublisher{
		Registry: registry,
		Ingester: &testsCommon.IngesterStub{
			SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
				mut.Lock()
				defer mut.Unlock()

				copied := make([]common.MetricPoint, len(points))
				copy(copied, points)
				chunks = append(chunks, copied)

				return nil
			},
		},
		BatchSize: 20,
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.Process(context.Background())

	// 3 servers with 13 sensors each yield 39 points, split 20 + 19
	require.Equal(t, 2, len(chunks))
	collected := make([]common.MetricPoint, 0)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), args.BatchSize)
		collected = append(collected, chunk...)
	}
	require.Equal(t, 3*metrics.NumKinds(), len(collected))

	// points keep the registry ordering, so all readings of a server stay contiguous
	profile, _ := metrics.DefaultProfile()
	pointIdx := 0
	for _, id := range registry.AllIdentities() {
		for _, def := range profile.Definitions() {
			point := collected[pointIdx]
			assert.Equal(t, def.ExportName, point.MetricName)
			assert.GreaterOrEqual(t, point.Value, def.Min)
			assert.LessOrEqual(t, point.Value, def.Max)
			assert.False(t, point.Timestamp.IsZero())

			expectedUnit := "None"
			if def.Unit == "Percent" {
				expectedUnit = "Percent"
			}
			assert.Equal(t, expectedUnit, point.Unit)

			require.Equal(t, 2, len(point.Dimensions))
			assert.Equal(t, common.Dimension{Name: "ServerID", Value: id}, point.Dimensions[0])
			assert.Equal(t, common.Dimension{Name: "MetricType", Value: string(def.Category)}, point.Dimensions[1])

			pointIdx++
		}
	}
}

func TestPublisher_ProcessContinuesPastFailedChunks(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("chunk rejected")
	calls := 0
	args := createTestPublisherArgs(t)
	args.BatchSize = 10 // 39 points yield 4 chunks
	args.Ingester = &testsCommon.IngesterStub{
		SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
			calls++
			if calls == 1 {
				return expectedErr
			}

			return nil
		},
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.Process(context.Background())

	assert.Equal(t, 4, calls)
}

func TestPublisher_ProcessSkipsWhileBusy(t *testing.T) {
	t.Parallel()

	releaseChan := make(chan struct{})
	firstCallChan := make(chan struct{})
	var submitCalls atomic.Int32

	args := createTestPublisherArgs(t)
	args.Ingester = &testsCommon.IngesterStub{
		SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
			if submitCalls.Add(1) == 1 {
				close(firstCallChan)
			}
			<-releaseChan

			return nil
		},
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	doneChan := make(chan struct{})
	go func() {
		publisherInstance.Process(context.Background())
		close(doneChan)
	}()

	<-firstCallChan
	publisherInstance.Process(context.Background()) // returns at once, the first cycle still holds the busy flag

	close(releaseChan)
	<-doneChan

	assert.Equal(t, int32(2), submitCalls.Load()) // only the 2 chunks of the first cycle
}

func TestPublisher_ProcessWhileDisabled(t *testing.T) {
	t.Parallel()

	registry := createTestRegistry(t, 1)
	registryCalls := 0
	submitCalls := 0
	args := ArgsPublisher{
		Registry: &testsCommon.RegistryStub{
			AllIdentitiesHandler: func() []string {
				registryCalls++
				return registry.AllIdentities()
			},
			LookupHandler: registry.Lookup,
		},
		Ingester: &testsCommon.IngesterStub{
			SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
				submitCalls++
				return nil
			},
		},
		BatchSize: 20,
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.SetEnabled(false)
	publisherInstance.Process(context.Background())

	// a disabled cycle never reaches the registry nor the ingester
	assert.Zero(t, registryCalls)
	assert.Zero(t, submitCalls)

	publisherInstance.SetEnabled(true)
	publisherInstance.Process(context.Background())

	assert.Equal(t, 1, registryCalls)
	assert.Equal(t, 1, submitCalls)
}

func TestPublisher_ProcessStopsBetweenChunksOnClosedContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	args := createTestPublisherArgs(t)
	args.BatchSize = 5
	args.Ingester = &testsCommon.IngesterStub{
		SubmitHandler: func(submitCtx context.Context, points []common.MetricPoint) error {
			calls++
			cancel()
			// the in-flight submit keeps a live context even after the run context closed
			assert.NoError(t, submitCtx.Err())

			return nil
		},
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.Process(ctx)

	assert.Equal(t, 1, calls)
}

func TestPublisher_ProcessWithEmptyFleet(t *testing.T) {
	t.Parallel()

	submitCalled := false
	args := ArgsPublisher{
		Registry: &testsCommon.RegistryStub{},
		Ingester: &testsCommon.IngesterStub{
			SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
				submitCalled = true
				return nil
			},
		},
		BatchSize: 20,
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.Process(context.Background())

	assert.False(t, submitCalled)
}

func TestPublisher_ProcessSkipsServersMissingFromTheRegistry(t *testing.T) {
	t.Parallel()

	registry := createTestRegistry(t, 3)
	ghostedRegistry := &testsCommon.RegistryStub{
		AllIdentitiesHandler: func() []string {
			return append(registry.AllIdentities(), "DELL-SRV-999")
		},
		LookupHandler: registry.Lookup,
	}

	collected := 0
	args := ArgsPublisher{
		Registry: ghostedRegistry,
		Ingester: &testsCommon.IngesterStub{
			SubmitHandler: func(ctx context.Context, points []common.MetricPoint) error {
				collected += len(points)
				return nil
			},
		},
		BatchSize: 20,
	}

	publisherInstance, err := NewPublisher(args)
	require.Nil(t, err)

	publisherInstance.Process(context.Background())

	// the ghost server contributes no points and does not disturb the real ones
	assert.Equal(t, 3*metrics.NumKinds(), collected)
}
