// Package httpapi serves the cover sheet API over HTTP.
//
// Routes:
//
//	POST /api/cover/download/pdf     rendered PDF, optional ?variant=
//	POST /api/cover/download/docx    rendered DOCX, optional ?variant=
//	POST /api/cover/send-to-shop     render, tokenize and mail to the print shop
//	GET  /healthz /readyz /health    probes
//	GET  /metrics                    Prometheus exposition
//
// Handlers decode and validate the submission, then hand a Record to the
// Service. Errors are mapped to the JSON shapes the form client expects.
package httpapi
