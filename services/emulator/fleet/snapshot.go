package fleet

import (
	"time"

	"github.com/virtbmc/idrac-emulator/services/emulator/metrics"
)

// Reading pairs one sampled value with the full definition of its kind
type Reading struct {
	Definition metrics.Definition
	Value      float64
}

// Snapshot is a complete, immutable reading of every declared kind for one server
// at one instant. Values are never cached between builds and never partial
type Snapshot struct {
	serverID string
	takenAt  time.Time
	profile  *metrics.Profile
	values   map[metrics.Kind]float64
}

func newSnapshot(serverID string, profile *metrics.Profile, values map[metrics.Kind]float64) Snapshot {
	return Snapshot{
		serverID: serverID,
		takenAt:  time.Now().UTC(),
		profile:  profile,
		values:   values,
	}
}

// ServerID returns the id of the server this snapshot was built for
func (snapshot Snapshot) ServerID() string {
	return snapshot.serverID
}

// TakenAt returns the build instant of this snapshot
func (snapshot Snapshot) TakenAt() time.Time {
	return snapshot.takenAt
}

// Value returns the sampled value of the provided kind
func (snapshot Snapshot) Value(kind metrics.Kind) float64 {
	return snapshot.values[kind]
}

// Readings returns one reading per declared kind in canonical order
func (snapshot Snapshot) Readings() []Reading {
	readings := make([]Reading, 0, len(snapshot.values))
	for _, kind := range metrics.AllKinds() {
		def, _ := snapshot.profile.Definition(kind)
		readings = append(readings, Reading{
			Definition: def,
			Value:      snapshot.values[kind],
		})
	}

	return readings
}

// CategoryReadings returns the readings belonging to the provided category, in canonical order
func (snapshot Snapshot) CategoryReadings(category metrics.Category) []Reading {
	readings := make([]Reading, 0, len(snapshot.values))
	for _, reading := range snapshot.Readings() {
		if reading.Definition.Category == category {
			readings = append(readings, reading)
		}
	}

	return readings
}
