package staff

import "github.com/go-faster/errors"

var (
	ErrNotFound     = errors.New("staff not found")
	ErrMissingName  = errors.New("missing name")
	ErrBatchTaken   = errors.New("batch number taken")
	ErrImmutableID  = errors.New("staff id is immutable")
	ErrInvalidPatch = errors.New("invalid staff patch")
)
