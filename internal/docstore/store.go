package docstore

import "errors"

// Sentinel errors for the document store.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, docstore.ErrUnavailable) {
//	    // respond 503
//	}
var (
	// ErrUnavailable indicates the backing store could not be read or
	// written (I/O failure, locked database, missing directory).
	ErrUnavailable = errors.New("docstore: storage unavailable")

	// ErrCorrupt indicates the stored bytes do not parse into the
	// expected document shape.
	ErrCorrupt = errors.New("docstore: corrupt document")
)
