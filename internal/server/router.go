package server

import (
	"log/slog"
	"net/http"
)

// NewHandler mounts the extraction routes and, when informes is non-nil, the
// stored-report routes, behind the request ID middleware.
func NewHandler(extract *ExtractServer, informes *InformeServer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	extract.Register(mux)
	if informes != nil {
		informes.Register(mux)
	}
	return WithRequestID(mux, logger)
}
