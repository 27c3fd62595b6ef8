package domain

import (
	"fmt"
	"strings"
)

// Region is the closed set of regions the form offers.
type Region string

const (
	RegionNortheast Region = "Northeast"
	RegionSouth     Region = "South"
	RegionWest      Region = "West"
	// RegionOther is encoded as all-zero flags.
	RegionOther Region = "Other"
)

// Regions lists the selectable regions in display order.
var Regions = []Region{RegionNortheast, RegionSouth, RegionWest, RegionOther}

// ParseRegion maps a user supplied region name to a Region. Matching is case-insensitive;
// "Midwest" and the empty string select RegionOther.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "northeast":
		return RegionNortheast, nil
	case "south":
		return RegionSouth, nil
	case "west":
		return RegionWest, nil
	case "other", "midwest", "":
		return RegionOther, nil
	default:
		return "", fmt.Errorf("unrecognized region %q", s)
	}
}

// Valid reports whether r is one of the known regions.
func (r Region) Valid() bool {
	switch r {
	case RegionNortheast, RegionSouth, RegionWest, RegionOther:
		return true
	}
	return false
}

// flags returns the northeast, south and west one-hot flags.
func (r Region) flags() (northeast, south, west float64) {
	switch r {
	case RegionNortheast:
		return 1, 0, 0
	case RegionSouth:
		return 0, 1, 0
	case RegionWest:
		return 0, 0, 1
	}
	return 0, 0, 0
}
