package app

import "errors"

var ErrNoActiveStream = errors.New("no active stream")

type UnknownStreamError struct {
	Name string
}

func (e *UnknownStreamError) Error() string {
	return "unknown stream kind " + e.Name
}
