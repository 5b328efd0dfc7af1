package entity

import "errors"

var (
	ErrImageNotFound         = errors.New("image not found")
	ErrNotAFile              = errors.New("image path is a directory")
	ErrUnsupportedFormat     = errors.New("unsupported image format")
	ErrUnsupportedCapability = errors.New("unsupported capability")
	ErrEngineUnavailable     = errors.New("engine is not available in this build")
)
