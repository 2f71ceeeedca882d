package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and sources return these
// (optionally wrapped) so services can translate them without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key, row or entry does not exist
// - ErrMalformed: a payload that does not match any known shape
var (
	ErrNotFound  = errors.New("not found")
	ErrMalformed = errors.New("malformed payload")
)
