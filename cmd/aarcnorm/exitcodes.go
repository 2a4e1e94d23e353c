package main

import (
	"errors"

	"aarcnorm/internal/config"
	"aarcnorm/internal/normalizer"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitStore      = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}

	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}

	return exitFailure
}

// normalizeCode classifies a normalization failure.
func normalizeCode(err error) int {
	switch {
	case errors.Is(err, normalizer.ErrMissingColumn),
		errors.Is(err, normalizer.ErrIntegrity),
		errors.Is(err, normalizer.ErrConsistency):
		return exitValidation
	case errors.Is(err, config.ErrMissingInputPath):
		return exitUsage
	default:
		return exitFailure
	}
}
