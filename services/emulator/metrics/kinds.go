package metrics

// Kind identifies one emulated sensor reading
type Kind string

// Category groups kinds the way the query façades and the export dimensions expect them
type Category string

const (
	KindCPU1Temp          Kind = "CPU1Temp"
	KindCPU2Temp          Kind = "CPU2Temp"
	KindMemoryTemp        Kind = "MemoryTemp"
	KindInletTemp         Kind = "InletTemp"
	KindExhaustTemp       Kind = "ExhaustTemp"
	KindDiskTemp          Kind = "DiskTemp"
	KindFan1Speed         Kind = "Fan1Speed"
	KindFan2Speed         Kind = "Fan2Speed"
	KindFan3Speed         Kind = "Fan3Speed"
	KindPowerConsumption  Kind = "PowerConsumption"
	KindCPUUsage          Kind = "CPUUsage"
	KindMemoryUsage       Kind = "MemoryUsage"
	KindNetworkThroughput Kind = "NetworkThroughput"
)

const (
	CategoryThermal     Category = "Thermal"
	CategoryCooling     Category = "Cooling"
	CategoryPower       Category = "Power"
	CategoryPerformance Category = "Performance"
)

// FanKinds holds the fan kinds in blower index order
var FanKinds = []Kind{KindFan1Speed, KindFan2Speed, KindFan3Speed}

var allKinds = []Kind{
	KindCPU1Temp,
	KindCPU2Temp,
	KindMemoryTemp,
	KindInletTemp,
	KindExhaustTemp,
	KindDiskTemp,
	KindFan1Speed,
	KindFan2Speed,
	KindFan3Speed,
	KindPowerConsumption,
	KindCPUUsage,
	KindMemoryUsage,
	KindNetworkThroughput,
}

var allCategories = map[Category]struct{}{
	CategoryThermal:     {},
	CategoryCooling:     {},
	CategoryPower:       {},
	CategoryPerformance: {},
}

// AllKinds returns the declared kinds in canonical order. The order is load-bearing:
// snapshots iterate it, the export loop flattens in it and tests rely on it
func AllKinds() []Kind {
	kinds := make([]Kind, len(allKinds))
	copy(kinds, allKinds)

	return kinds
}

// NumKinds returns the size of the declared kind set
func NumKinds() int {
	return len(allKinds)
}

// IsKnownCategory returns true if the provided category is part of the closed category set
func IsKnownCategory(category Category) bool {
	_, found := allCategories[category]

	return found
}
