// Package chemical provides the read-only physical property and exposure
// threshold table consumed by the dispersion engine.
//
// Exposure thresholds are stored in ppm (60-minute AEGL values, NIOSH IDLH,
// AIHA ERPG). A zero threshold means the guideline is not defined for the
// chemical; callers must fall back rather than treat it as "harmless".
package chemical

import (
	"maps"
	"slices"
	"strings"
)

// MolarVolume is the volume of one mole of ideal gas at 25 °C and 1 atm, in
// litres. It converts between ppm and mg/m³.
const MolarVolume = 24.45

// Properties holds the physical constants and exposure guidelines of one
// chemical.
type Properties struct {
	Name            string  `json:"name"`
	MolecularWeight float64 `json:"molecular_weight"` // g/mol
	BoilingPoint    float64 `json:"boiling_point"`    // °C
	VaporPressure   float64 `json:"vapor_pressure"`   // kPa at 20 °C
	SpecificGravity float64 `json:"specific_gravity"`

	AEGL1 float64 `json:"aegl1,omitempty"` // ppm
	AEGL2 float64 `json:"aegl2,omitempty"` // ppm
	AEGL3 float64 `json:"aegl3,omitempty"` // ppm
	IDLH  float64 `json:"idlh,omitempty"`  // ppm
	ERPG1 float64 `json:"erpg1,omitempty"` // ppm
	ERPG2 float64 `json:"erpg2,omitempty"` // ppm
	ERPG3 float64 `json:"erpg3,omitempty"` // ppm
}

// ToMgPerM3 converts a ppm value to mg/m³ for this chemical. It returns 0 when
// the molecular weight is unknown.
func (p Properties) ToMgPerM3(ppm float64) float64 {
	if p.MolecularWeight <= 0 {
		return 0
	}
	return ppm * p.MolecularWeight / MolarVolume
}

// ToPPM converts a mg/m³ concentration to ppm for this chemical. It returns 0
// when the molecular weight is unknown.
func (p Properties) ToPPM(mgPerM3 float64) float64 {
	if p.MolecularWeight <= 0 {
		return 0
	}
	return mgPerM3 * MolarVolume / p.MolecularWeight
}

// Lookup resolves a chemical identifier to its properties.
type Lookup interface {
	Lookup(id string) (Properties, bool)
}

// Table is an immutable, in-memory Lookup keyed by lowercase common name.
type Table struct {
	entries map[string]Properties
}

// NewTable builds a table from the given entries. Keys are normalized to
// lowercase; the input map is copied.
func NewTable(entries map[string]Properties) *Table {
	t := &Table{entries: make(map[string]Properties, len(entries))}
	for k, v := range entries {
		t.entries[Normalize(k)] = v
	}
	return t
}

// Lookup returns the properties for id. Matching is case-insensitive and
// ignores surrounding whitespace.
func (t *Table) Lookup(id string) (Properties, bool) {
	if t == nil {
		return Properties{}, false
	}
	p, ok := t.entries[Normalize(id)]
	return p, ok
}

// Names returns the table keys in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}

// Normalize maps a chemical identifier to its table key.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Default returns the built-in table of common industrial toxic chemicals.
func Default() *Table {
	return NewTable(defaultEntries)
}

var defaultEntries = map[string]Properties{
	"ammonia": {
		Name: "Ammonia", MolecularWeight: 17.03, BoilingPoint: -33.34, VaporPressure: 857, SpecificGravity: 0.682,
		AEGL1: 30, AEGL2: 160, AEGL3: 1100, IDLH: 300, ERPG1: 25, ERPG2: 150, ERPG3: 1500,
	},
	"chlorine": {
		Name: "Chlorine", MolecularWeight: 70.90, BoilingPoint: -34.04, VaporPressure: 673, SpecificGravity: 1.41,
		AEGL1: 0.5, AEGL2: 2.0, AEGL3: 20, IDLH: 10, ERPG1: 1, ERPG2: 3, ERPG3: 20,
	},
	"hydrogen sulfide": {
		Name: "Hydrogen sulfide", MolecularWeight: 34.08, BoilingPoint: -60.3, VaporPressure: 1780, SpecificGravity: 1.19,
		AEGL1: 0.51, AEGL2: 27, AEGL3: 50, IDLH: 100, ERPG1: 0.1, ERPG2: 30, ERPG3: 100,
	},
	"sulfur dioxide": {
		Name: "Sulfur dioxide", MolecularWeight: 64.07, BoilingPoint: -10, VaporPressure: 330, SpecificGravity: 1.46,
		AEGL1: 0.20, AEGL2: 0.75, AEGL3: 30, IDLH: 100, ERPG1: 0.3, ERPG2: 3, ERPG3: 25,
	},
	"hydrogen chloride": {
		Name: "Hydrogen chloride", MolecularWeight: 36.46, BoilingPoint: -85.05, VaporPressure: 4260, SpecificGravity: 1.19,
		AEGL1: 1.8, AEGL2: 22, AEGL3: 100, IDLH: 50, ERPG1: 3, ERPG2: 20, ERPG3: 150,
	},
	"hydrogen fluoride": {
		Name: "Hydrogen fluoride", MolecularWeight: 20.01, BoilingPoint: 19.5, VaporPressure: 103, SpecificGravity: 0.99,
		AEGL1: 1.0, AEGL2: 24, AEGL3: 44, IDLH: 30, ERPG1: 2, ERPG2: 20, ERPG3: 50,
	},
	"hydrogen cyanide": {
		Name: "Hydrogen cyanide", MolecularWeight: 27.03, BoilingPoint: 25.6, VaporPressure: 83, SpecificGravity: 0.687,
		AEGL1: 1.0, AEGL2: 7.1, AEGL3: 15, IDLH: 50, ERPG2: 10, ERPG3: 25,
	},
	// AEGL-1 is not recommended for phosgene.
	"phosgene": {
		Name: "Phosgene", MolecularWeight: 98.92, BoilingPoint: 8.3, VaporPressure: 161, SpecificGravity: 1.43,
		AEGL2: 0.30, AEGL3: 0.75, IDLH: 2, ERPG2: 0.5, ERPG3: 1.5,
	},
	"formaldehyde": {
		Name: "Formaldehyde", MolecularWeight: 30.03, BoilingPoint: -19, VaporPressure: 518, SpecificGravity: 0.815,
		AEGL1: 0.90, AEGL2: 14, AEGL3: 56, IDLH: 20, ERPG1: 1, ERPG2: 10, ERPG3: 25,
	},
	"benzene": {
		Name: "Benzene", MolecularWeight: 78.11, BoilingPoint: 80.1, VaporPressure: 10, SpecificGravity: 0.877,
		AEGL1: 52, AEGL2: 800, AEGL3: 4000, IDLH: 500, ERPG1: 50, ERPG2: 150, ERPG3: 1000,
	},
	"methanol": {
		Name: "Methanol", MolecularWeight: 32.04, BoilingPoint: 64.7, VaporPressure: 13, SpecificGravity: 0.792,
		AEGL1: 530, AEGL2: 2100, AEGL3: 7200, IDLH: 6000, ERPG1: 200, ERPG2: 1000, ERPG3: 5000,
	},
	"carbon monoxide": {
		Name: "Carbon monoxide", MolecularWeight: 28.01, BoilingPoint: -191.5, VaporPressure: 3500, SpecificGravity: 0.97,
		AEGL2: 83, AEGL3: 330, IDLH: 1200, ERPG1: 200, ERPG2: 350, ERPG3: 500,
	},
}
