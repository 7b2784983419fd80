// Package assay turns the text and tables of a lab assay certificate into an
// entity.ExtractionResult: one header (report number, client, dates) plus the
// element grades read from the "Ley" row.
//
// Two strategies are tried in order. The structured-table extractor looks for
// a detected table whose header row names "Elemento" and which carries a "Ley"
// row; the first page that yields elements wins. When no page does, the text
// fallback scans the flattened document text for a "Ley" line and maps the
// numbers it finds onto the fixed certificate column layout.
//
// Nothing in this package fails on a noisy document: a missed pattern yields an
// empty field or an empty element list, and an unparseable grade drops only
// that entry.
package assay
