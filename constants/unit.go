package constants

// Grade units as printed on the lab certificates.
const (
	UnitGramsPerTonne = "g/tm"
	UnitPercent       = "%"
)

// InferUnit returns the default unit for a canonical element symbol:
// precious metals are reported in g/tm, everything else in percent.
func InferUnit(symbol string) string {
	switch symbol {
	case "Au", "Ag":
		return UnitGramsPerTonne
	default:
		return UnitPercent
	}
}
