package entity

// Informe is the header of a lab assay certificate.
// Date fields hold YYYY-MM-DD when the source printed DD/MM/YYYY, the raw text otherwise,
// and "" when the field was not found.
type Informe struct {
	NumeroEnsayo   string `json:"numero_ensayo"`
	Cliente        string `json:"cliente"`
	FechaRecepcion string `json:"fecha_recepcion"`
	FechaInicio    string `json:"fecha_inicio"`
	FechaTermino   string `json:"fecha_termino"`
}

// InformeElemento is one measured grade of a certificate.
type InformeElemento struct {
	NumeroEnsayo string  `json:"numero_ensayo"`
	Elemento     string  `json:"elemento"`
	Nombre       string  `json:"nombre"`
	Unidad       string  `json:"unidad"`
	Ley          float64 `json:"ley"`
}

// ExtractionResult is the payload produced for one document.
// InformeElemento is never nil so that it serializes as [] rather than null.
type ExtractionResult struct {
	Informe         Informe           `json:"informe"`
	InformeElemento []InformeElemento `json:"informe_elemento"`
}
