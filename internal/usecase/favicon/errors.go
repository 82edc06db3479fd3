package favicon

import "errors"

// ErrNoFaviconFound is returned when every candidate in the probe queue was
// tried (or the 10-URL cap was hit) without producing a usable icon.
var ErrNoFaviconFound = errors.New("favicon: no icon found within candidate cap")
