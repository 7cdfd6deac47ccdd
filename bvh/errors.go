package bvh

import "errors"

var (
	ErrDuplicateObject = errors.New("bvh: duplicate object id")
	ErrNonFiniteVolume = errors.New("bvh: object volume is not finite")
	ErrTooManyObjects  = errors.New("bvh: too many objects")
)
