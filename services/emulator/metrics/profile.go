package metrics

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed profile.toml
var defaultProfileTOML []byte

// Definition describes how one metric kind is sampled and presented
type Definition struct {
	Kind       Kind     `toml:"Kind"`
	Category   Category `toml:"Category"`
	Min        float64  `toml:"Min"`
	Max        float64  `toml:"Max"`
	Unit       string   `toml:"Unit"`
	Decimals   int      `toml:"Decimals"`
	ExportName string   `toml:"ExportName"`
}

type profileDocument struct {
	Sensors []Definition `toml:"Sensors"`
}

// Profile holds the validated definition set covering every declared kind
type Profile struct {
	defs map[Kind]Definition
}

// DefaultProfile parses the embedded sensor profile
func DefaultProfile() (*Profile, error) {
	return parseProfile(defaultProfileTOML)
}

// LoadProfile parses a sensor profile from the provided TOML file
func LoadProfile(filepath string) (*Profile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file '%s': %w", filepath, err)
	}

	return parseProfile(data)
}

func parseProfile(data []byte) (*Profile, error) {
	var doc profileDocument
	err := toml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	defs := make(map[Kind]Definition, len(doc.Sensors))
	for _, def := range doc.Sensors {
		err = validateDefinition(def)
		if err != nil {
			return nil, err
		}

		_, exists := defs[def.Kind]
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKind, def.Kind)
		}

		defs[def.Kind] = def
	}

	for _, kind := range allKinds {
		_, found := defs[kind]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingKind, kind)
		}
	}

	return &Profile{defs: defs}, nil
}

func validateDefinition(def Definition) error {
	isDeclared := false
	for _, kind := range allKinds {
		if kind == def.Kind {
			isDeclared = true
			break
		}
	}
	if !isDeclared {
		return fmt.Errorf("%w: %s", ErrUnknownKind, def.Kind)
	}
	if !IsKnownCategory(def.Category) {
		return fmt.Errorf("%w: %s for kind %s", ErrUnknownCategory, def.Category, def.Kind)
	}
	if def.Min > def.Max {
		return fmt.Errorf("%w: kind %s has min %v > max %v", ErrInvalidRange, def.Kind, def.Min, def.Max)
	}
	if def.Decimals < 0 || def.Decimals > 1 {
		return fmt.Errorf("%w: kind %s declares %d decimals", ErrInvalidDecimals, def.Kind, def.Decimals)
	}
	if len(def.ExportName) == 0 || strings.ContainsAny(def.ExportName, " \t") {
		return fmt.Errorf("%w: kind %s", ErrInvalidExportName, def.Kind)
	}

	return nil
}

// Definition returns the definition of the provided kind
func (profile *Profile) Definition(kind Kind) (Definition, bool) {
	def, found := profile.defs[kind]

	return def, found
}

// Definitions returns all definitions in canonical kind order
func (profile *Profile) Definitions() []Definition {
	defs := make([]Definition, 0, len(profile.defs))
	for _, kind := range allKinds {
		defs = append(defs, profile.defs[kind])
	}

	return defs
}

// IsInterfaceNil returns true if there is no value under the interface
func (profile *Profile) IsInterfaceNil() bool {
	return profile == nil
}
