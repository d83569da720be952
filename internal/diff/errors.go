package diff

import "errors"

// ErrMalformedEntry indicates an input diff entry that cannot be
// reviewed at all, such as one missing a filename. This is the only
// input condition that fails an entire review.
var ErrMalformedEntry = errors.New("malformed diff entry")
