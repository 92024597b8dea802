package catalog

import "errors"

// ErrNotFound reports a movie id unknown to the catalog.  Handlers map it
// to the dedicated not-found view instead of an error banner.
var ErrNotFound = errors.New("catalog: movie not found")
