package constants

// ExtractionMethod records which strategy produced the element list of a result.
type ExtractionMethod string

// Stable values (logged and stored as-is).
const (
	MethodTable ExtractionMethod = "table" // structured "Elemento"/"Ley" table on some page
	MethodText  ExtractionMethod = "text"  // flattened text fallback
	MethodNone  ExtractionMethod = "none"  // no assay data recognized
)
