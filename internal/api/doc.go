// Package api implements the HTTP REST API for the gearbook service.
//
// This package provides:
//   - REST endpoints for the device catalogue, user registration, and
//     device assignment
//   - Photo upload (multipart) and streaming backed by a blob store
//   - Middleware stack (request ID, logging, recovery, CORS, body limits)
//
// # Architecture
//
// The API server is a thin HTTP layer over the registry: handlers decode
// requests, call a single registry operation, and map its errors to
// status codes. Photo bytes never pass through the registry; they go
// straight to the blob store, with only the generated key recorded in
// the catalogue.
//
// # Lifecycle
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
