/*
Package pfmerr defines the error values returned by the encoder and their
numeric status codes. Finer-grained errors wrap broader ones so callers can
test with errors.Is against either.
*/
package pfmerr

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
)

// Status codes, negative on failure.
const (
	Success      = 0
	NotSupported = -1
	Invalid      = -2
	NoInit       = -3
	NotFound     = -4
	FeatComb     = -5
	Umask        = -6
	NoMem        = -7
	Attr         = -8
	AttrVal      = -9
	AttrSet      = -10
	TooMany      = -11
	TooSmall     = -12
	Failure      = -13
)

var (
	ErrNotSupported = errors.New("not supported")
	ErrInvalid      = errors.New("invalid parameters")
	ErrNoInit       = errors.New("library not initialized")
	ErrNotFound     = errors.New("not found")
	ErrAttrValue    = errors.New("invalid or missing attribute value")
	ErrTooMany      = errors.New("too many parameters")
	ErrTooSmall     = errors.New("parameter is too small")
	ErrFailure      = errors.New("failure")

	// the allocator does not report failure, this only names the code
	errNoMem = errors.New("not enough memory")

	ErrFeatComb = fmt.Errorf("%w: invalid combination of event features", ErrAttrValue)
	ErrUmask    = fmt.Errorf("%w: invalid or missing unit mask", ErrAttrValue)
	ErrAttrSet  = fmt.Errorf("%w: attribute value already set", ErrAttrValue)
	ErrAttr     = fmt.Errorf("%w: invalid or unknown attribute", ErrNotFound)
)

// ordered most specific first so wrapped errors resolve to the narrowest code
var codes = []struct {
	err  error
	code int
}{
	{ErrFeatComb, FeatComb},
	{ErrUmask, Umask},
	{ErrAttrSet, AttrSet},
	{ErrAttr, Attr},
	{ErrNotSupported, NotSupported},
	{ErrInvalid, Invalid},
	{ErrNoInit, NoInit},
	{ErrNotFound, NotFound},
	{errNoMem, NoMem},
	{ErrAttrValue, AttrVal},
	{ErrTooMany, TooMany},
	{ErrTooSmall, TooSmall},
	{ErrFailure, Failure},
}

// Code returns the status code for err. Errors outside this package map to Failure.
func Code(err error) int {
	if err == nil {
		return Success
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return Failure
}

// StrError returns the message associated with a status code.
func StrError(code int) string {
	if code == Success {
		return "success"
	}
	for _, c := range codes {
		if c.code == code {
			return c.err.Error()
		}
	}
	return "unknown error code"
}

// Name returns a short identifier for a status code, used as a metrics label.
func Name(code int) string {
	switch code {
	case Success:
		return "success"
	case NotSupported:
		return "notsupp"
	case Invalid:
		return "inval"
	case NoInit:
		return "noinit"
	case NotFound:
		return "notfound"
	case FeatComb:
		return "featcomb"
	case Umask:
		return "umask"
	case NoMem:
		return "nomem"
	case Attr:
		return "attr"
	case AttrVal:
		return "attr_val"
	case AttrSet:
		return "attr_set"
	case TooMany:
		return "toomany"
	case TooSmall:
		return "toosmall"
	default:
		return "failure"
	}
}
