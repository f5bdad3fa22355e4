package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodeForExitError(t *testing.T) {
	require.Equal(t, 2, exitCodeFor(&exitError{code: 2, msg: "blocked"}))
	require.Equal(t, 4, exitCodeFor(&exitError{code: 4, msg: "warned"}))
}

func TestExitCodeForOtherErrorIsOne(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(errors.New("boom")))
}

func TestExitCodeForWrappedExitError(t *testing.T) {
	err := errors.New("loading config: " + (&exitError{code: 3, msg: "bad config"}).Error())
	require.Equal(t, 1, exitCodeFor(err)) // a plain wrapped string, not errors.As-compatible, stays generic

	wrapped := errorsJoinWrap(&exitError{code: 3, msg: "bad config"})
	require.Equal(t, 3, exitCodeFor(wrapped))
}

func errorsJoinWrap(err error) error {
	return &wrapper{err: err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "run: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestNewLoggerLevels(t *testing.T) {
	require.Equal(t, "debug", newLogger("debug").GetLevel().String())
	require.Equal(t, "warn", newLogger("warn").GetLevel().String())
	require.Equal(t, "error", newLogger("error").GetLevel().String())
	require.Equal(t, "info", newLogger("bogus").GetLevel().String())
}
