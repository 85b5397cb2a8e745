package conversion

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMime is returned when an original claims to be an image but
// cannot be decoded.
var ErrUnsupportedMime = errors.New("unsupported mime type")

// DerivationError reports a failure to derive files for one media record.
type DerivationError struct {
	MediaID    string
	Conversion string
	Err        error
}

func (e *DerivationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Conversion == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("conversion %s: %v", e.Conversion, e.Err)
}

func (e *DerivationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func derivationError(mediaID, conversion string, err error) error {
	return &DerivationError{MediaID: mediaID, Conversion: conversion, Err: err}
}
