// Package http implements the HTTP handlers of the dashboard API.
//
// Handlers are thin: they validate parameters, call the analysis service
// and render JSON with chi/render. Errors are converted to RFC 7807 problem
// documents by the shared error handler.
//
//	GET  /api/overview              headline counts
//	GET  /api/performers?n=         top and bottom n by yearly return
//	GET  /api/sectors               average yearly return per sector
//	GET  /api/volatility?n=         n most volatile symbols
//	GET  /api/correlation           daily return correlation matrix
//	GET  /api/cumulative?n=         cumulative curves of the n best performers
//	GET  /api/symbols               analyzed symbols
//	GET  /api/symbols/{symbol}      full metrics of one symbol
//	POST /api/refresh               rerun the pipeline
package http
