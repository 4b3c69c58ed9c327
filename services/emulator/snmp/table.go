package snmp

import (
	"fmt"
	"math"
	"sort"

	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
)

// The served MIB view is the Dell OpenManage subset real collectors poll on
// PowerEdge machines, indexed by chassis ordinal.

// EnterpriseRootOID is the Dell enterprise arc every served object lives under
var EnterpriseRootOID = []uint32{1, 3, 6, 1, 4, 1, 674}

const systemStatusOK = 3

var (
	oidServiceTagColumn   = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 1, 3, 2, 1}
	oidModelNameColumn    = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 1, 3, 12, 1}
	oidSystemStatusColumn = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 4, 200, 10, 1, 4}
	oidPowerColumn        = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 4, 600, 30, 1, 6}
	oidFanColumn          = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 4, 700, 12, 1, 6}
	oidTemperatureColumn  = []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 4, 700, 20, 1, 6}
)

// temperature probe indexes within a chassis
var temperatureProbes = []metrics.Kind{
	metrics.KindCPU1Temp,
	metrics.KindCPU2Temp,
	metrics.KindInletTemp,
	metrics.KindExhaustTemp,
}

type entryKind int

const (
	entryMetric entryKind = iota
	entrySystemStatus
	entryServiceTag
	entryModelName
)

type tableEntry struct {
	oid      []uint32
	serverID string
	kind     entryKind
	metric   metrics.Kind
	wireType ValueType
}

// oidTable is the fixed, ascending view over every served object. It is built
// once from the registry and never mutated afterwards
type oidTable struct {
	entries []tableEntry
}

func newOIDTable(registry Registry) *oidTable {
	ids := registry.AllIdentities()
	entries := make([]tableEntry, 0, len(ids)*(len(temperatureProbes)+len(metrics.FanKinds)+4))

	for i, id := range ids {
		chassis := uint32(i + 1)

		entries = append(entries, tableEntry{
			oid:      appendArcs(oidServiceTagColumn, chassis),
			serverID: id,
			kind:     entryServiceTag,
			wireType: ValueTypeOctetString,
		})
		entries = append(entries, tableEntry{
			oid:      appendArcs(oidModelNameColumn, chassis),
			serverID: id,
			kind:     entryModelName,
			wireType: ValueTypeOctetString,
		})
		entries = append(entries, tableEntry{
			oid:      appendArcs(oidSystemStatusColumn, chassis),
			serverID: id,
			kind:     entrySystemStatus,
			wireType: ValueTypeInteger,
		})
		entries = append(entries, tableEntry{
			oid:      appendArcs(oidPowerColumn, chassis, 3),
			serverID: id,
			kind:     entryMetric,
			metric:   metrics.KindPowerConsumption,
			wireType: ValueTypeGauge32,
		})
		for j, fanKind := range metrics.FanKinds {
			entries = append(entries, tableEntry{
				oid:      appendArcs(oidFanColumn, chassis, uint32(j+1)),
				serverID: id,
				kind:     entryMetric,
				metric:   fanKind,
				wireType: ValueTypeGauge32,
			})
		}
		for p, tempKind := range temperatureProbes {
			entries = append(entries, tableEntry{
				oid:      appendArcs(oidTemperatureColumn, chassis, uint32(p+1)),
				serverID: id,
				kind:     entryMetric,
				metric:   tempKind,
				wireType: ValueTypeInteger,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return compareOID(entries[i].oid, entries[j].oid) < 0
	})

	return &oidTable{entries: entries}
}

func appendArcs(column []uint32, arcs ...uint32) []uint32 {
	oid := make([]uint32, 0, len(column)+len(arcs))
	oid = append(oid, column...)

	return append(oid, arcs...)
}

func compareOID(a []uint32, b []uint32) int {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// size returns the number of served objects
func (table *oidTable) size() int {
	return len(table.entries)
}

// get returns the entry registered under exactly the provided oid
func (table *oidTable) get(oid []uint32) (tableEntry, bool) {
	idx := sort.Search(len(table.entries), func(i int) bool {
		return compareOID(table.entries[i].oid, oid) >= 0
	})
	if idx < len(table.entries) && compareOID(table.entries[idx].oid, oid) == 0 {
		return table.entries[idx], true
	}

	return tableEntry{}, false
}

// next returns the first entry whose oid sorts strictly after the provided oid
func (table *oidTable) next(oid []uint32) (tableEntry, bool) {
	idx := sort.Search(len(table.entries), func(i int) bool {
		return compareOID(table.entries[i].oid, oid) > 0
	})
	if idx < len(table.entries) {
		return table.entries[idx], true
	}

	return tableEntry{}, false
}

// resolve produces the wire value of one entry against a fresh snapshot
func resolve(entry tableEntry, registry Registry) (Value, error) {
	serverEntry, err := registry.Lookup(entry.serverID)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownEntry, entry.serverID)
	}

	switch entry.kind {
	case entryServiceTag:
		return StringValue(serverEntry.Identity().ServiceTag), nil
	case entryModelName:
		return StringValue(serverEntry.Identity().Model), nil
	case entrySystemStatus:
		return IntegerValue(systemStatusOK), nil
	case entryMetric:
		sampled := serverEntry.Snapshot().Value(entry.metric)
		if entry.wireType == ValueTypeGauge32 {
			return GaugeValue(uint64(sampled)), nil
		}
		return IntegerValue(int64(math.Round(sampled))), nil
	default:
		return Value{}, fmt.Errorf("%w: kind %d", ErrUnknownEntry, entry.kind)
	}
}
