package models

import "errors"

var (
	ErrUnknownDemoType = errors.New("unknown demo type")
	ErrUnknownOption   = errors.New("option not in catalog")
)
