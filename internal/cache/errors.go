package cache

import (
	"fmt"

	"github.com/rohmanhakim/news-harvester/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseKeyDerivation StoreErrorCause = "key derivation failed"
	ErrCauseReadFailure   StoreErrorCause = "read failed"
	ErrCauseWriteFailure  StoreErrorCause = "write failed"
	ErrCausePathError     StoreErrorCause = "path error"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}
