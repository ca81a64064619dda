package httpserver

import "errors"

var (
	ErrStart    = errors.New("ops server failed to start")
	ErrShutdown = errors.New("ops server did not shut down cleanly")
)
