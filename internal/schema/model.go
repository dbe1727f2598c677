// Package schema names the canonical columns of the population dataset and
// the fixed tables that map source header spellings onto them.
package schema

import "maps"

// Canonical column names.
const (
	Country        = "Country"
	Population     = "Population_2023"
	Density        = "Density_per_km2"
	LandArea       = "Land_Area_km2"
	Migrants       = "Migrants_net"
	FertRate       = "Fert_Rate"
	MedianAge      = "Median_Age"
	NetChange      = "NetChange"
	Rank           = "Rank"
	UrbanPop       = "UrbanPop_pct"
	WorldShare     = "WorldShare_pct"
	YearlyChange   = "YearlyChange"
	Region         = "Region"
	PopulationCalc = "Population_per_km2_calc"
)

// renames maps known source header spellings to canonical names.
var renames = map[string]string{
	"Population2023":    Population,
	"Population (2023)": Population,
	"Density(P/Km²)":    Density,
	"Density (per km²)": Density,
	"Land Area(Km²)":    LandArea,
	"Migrants(net)":     Migrants,
	"Fert.Rate":         FertRate,
	"MedianAge":         MedianAge,
	"UrbanPop%":         UrbanPop,
	"WorldShare":        WorldShare,
	"World Region":      Region,
	"Continent":         Region,
}

// Renames returns a copy of the default header rename table.
func Renames() map[string]string { return maps.Clone(renames) }

// PercentColumns are stored as "12.3 %" strings in the source.
func PercentColumns() []string {
	return []string{UrbanPop, WorldShare, YearlyChange}
}

// NumericColumns are plain numeric columns.
func NumericColumns() []string {
	return []string{Population, Density, LandArea, Migrants, FertRate, MedianAge, NetChange, Rank}
}

// RequiredColumns must be present on every retained row.
func RequiredColumns() []string {
	return []string{Country, Population, LandArea}
}

// MissingTokens are source markers meaning "not available".
func MissingTokens() []string {
	return []string{"nan", "N.A.", "N.A"}
}
