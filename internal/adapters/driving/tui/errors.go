package tui

import "errors"

// ErrMissingChunkService is returned when the chunk service is not provided.
var ErrMissingChunkService = errors.New("tui: chunk service is required")
