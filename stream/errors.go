package stream

import "errors"

// ErrUnknownTarget indicates a subscription request that cannot be
// resolved to a primary source id.
var ErrUnknownTarget = errors.New("subscription target cannot be resolved to a source id")
