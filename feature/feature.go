package feature

import (
	"fmt"
	"sort"
)

// Feature identifies a category of game entity for which separate action
// records are generated.  The numeric value is the feature byte written into
// the actions and also defines the output order.
type Feature uint8

// Enumeration of the game features.
const (
	Trains Feature = iota
	RoadVehicles
	Ships
	Aircraft
	Stations
	Canals
	Bridges
	Houses
	Global
	IndustryTiles
	Industries
	Cargos
	Sounds
	Airports
	Signals
	Objects
	RailTypes
	AirportTiles
	RoadTypes
	TramTypes
)

var featureNames = [...]string{
	Trains:        "FEAT_TRAINS",
	RoadVehicles:  "FEAT_ROADVEHS",
	Ships:         "FEAT_SHIPS",
	Aircraft:      "FEAT_AIRCRAFT",
	Stations:      "FEAT_STATIONS",
	Canals:        "FEAT_CANALS",
	Bridges:       "FEAT_BRIDGES",
	Houses:        "FEAT_HOUSES",
	Global:        "FEAT_GLOBALVARS",
	IndustryTiles: "FEAT_INDUSTRYTILES",
	Industries:    "FEAT_INDUSTRIES",
	Cargos:        "FEAT_CARGOS",
	Sounds:        "FEAT_SOUNDEFFECTS",
	Airports:      "FEAT_AIRPORTS",
	Signals:       "FEAT_SIGNALS",
	Objects:       "FEAT_OBJECTS",
	RailTypes:     "FEAT_RAILTYPES",
	AirportTiles:  "FEAT_AIRPORTTILES",
	RoadTypes:     "FEAT_ROADTYPES",
	TramTypes:     "FEAT_TRAMTYPES",
}

func (f Feature) String() string {
	if int(f) < len(featureNames) {
		return featureNames[f]
	}

	return fmt.Sprintf("feature 0x%02X", uint8(f))
}

// Valid reports whether f is one of the enumerated features.
func (f Feature) Valid() bool {
	return int(f) < len(featureNames)
}

// Parse looks up a feature by its script name (eg. `FEAT_TRAINS`).
func Parse(name string) (Feature, bool) {
	for i, fname := range featureNames {
		if fname == name {
			return Feature(i), true
		}
	}

	return 0, false
}

// Set is a set of features.  The zero value is not usable: create sets with
// NewSet.
type Set map[Feature]struct{}

// NewSet creates a set holding the given features.
func NewSet(features ...Feature) Set {
	s := make(Set, len(features))
	for _, f := range features {
		s[f] = struct{}{}
	}

	return s
}

// Add adds f to the set and reports whether it was not already present.
func (s Set) Add(f Feature) bool {
	if _, ok := s[f]; ok {
		return false
	}

	s[f] = struct{}{}
	return true
}

// Has reports whether f is in the set.
func (s Set) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the features of the set in ascending order.  Action records
// are always generated in this order so that output is reproducible.
func (s Set) Sorted() []Feature {
	features := make([]Feature, 0, len(s))
	for f := range s {
		features = append(features, f)
	}

	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}
