// Package blob stores device reference photos.
//
// Photos are write-once content: accepted at device creation, streamed
// back by device identifier, released when the device is deleted. The
// catalogue document records only the stored key; the bytes live here.
//
// Two drivers implement Store, selected by photos.driver in config:
//
//   - LocalStore (default): files under a root directory, written via
//     temp file and atomic rename.
//   - S3Store: one bucket on AWS S3 or any S3-compatible endpoint such
//     as MinIO.
//
// Stored keys are generated by NewKey from the device identifier plus a
// random component, so client-supplied filenames can neither collide
// nor traverse the store's namespace.
package blob
