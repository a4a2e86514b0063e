package engine

import "errors"

var (
	// ErrNotReady means the lit surface for the current canvas size has not
	// been built yet. Drawing is skipped, never fatal.
	ErrNotReady = errors.New("engine: textures not ready")

	// ErrAssetLoad means a texture could not be loaded or decoded. The
	// engine stays not ready until new textures are supplied.
	ErrAssetLoad = errors.New("engine: texture load failed")
)
