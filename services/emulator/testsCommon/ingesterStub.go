package testsCommon

import (
	"context"

	"github.com/virtbmc/idrac-emulator/services/emulator/common"
)

// IngesterStub -
type IngesterStub struct {
	SubmitHandler func(ctx context.Context, points []common.MetricPoint) error
}

// Submit -
func (stub *IngesterStub) Submit(ctx context.Context, points []common.MetricPoint) error {
	if stub.SubmitHandler != nil {
		return stub.SubmitHandler(ctx, points)
	}

	return nil
}

// IsInterfaceNil -
func (stub *IngesterStub) IsInterfaceNil() bool {
	return stub == nil
}
