package eventstream

import "errors"

// ErrNilFetchEvent indicates a nil fetch event payload was provided to a publisher.
var ErrNilFetchEvent = errors.New("nil fetch event")
