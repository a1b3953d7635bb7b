package titanium

import "fmt"

// Sentinel error kinds. Use [errors.Is] to test for these; construction-time
// errors wrap them with contextual detail via fmt.Errorf("...: %w", ...),
// used consistently throughout the engine.
var (
	// ErrBindError means a task's call arguments could not be bound: the
	// same parameter name was given twice, or an injectable value could not
	// be coerced to its declared type. Tasks carry no declared parameter
	// list, so a missing or unknown parameter name is not detected at
	// construction.
	ErrBindError = fmt.Errorf("titanium: bind error")

	// ErrMissingInjectable means a required injectable parameter has no
	// explicit value and no binding in the active context.
	ErrMissingInjectable = fmt.Errorf("titanium: missing injectable")

	// ErrUnhashableValue means a parameter value has no defined canonical
	// hash encoding.
	ErrUnhashableValue = fmt.Errorf("titanium: unhashable value")

	// ErrCycleDetected is raised defensively by the scheduler's discovery
	// walk; it should be unreachable given that a handle can only ever
	// reference a task that already existed at its construction time.
	ErrCycleDetected = fmt.Errorf("titanium: cycle detected")

	// ErrCacheCorruption means a persisted record's header or payload
	// failed validation.
	ErrCacheCorruption = fmt.Errorf("titanium: cache corruption")

	// ErrStorageError means a persistence backend I/O operation failed.
	ErrStorageError = fmt.Errorf("titanium: storage error")

	// ErrCancelled means a run was aborted via its cancellation context.
	ErrCancelled = fmt.Errorf("titanium: cancelled")
)

// TaskFailedError wraps the error a task body returned. It carries the
// task's name and signature so the failure can be reported without holding
// onto the task itself.
type TaskFailedError struct {
	TaskName  string
	Signature uint64
	Inner     error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("titanium: task %q (sig %016x) failed: %v", e.TaskName, e.Signature, e.Inner)
}

func (e *TaskFailedError) Unwrap() error { return e.Inner }

// DependencyFailedError means a prerequisite task failed; the dependent is
// marked failed with this error without its body ever running.
type DependencyFailedError struct {
	// DependencySignature identifies the prerequisite that failed.
	DependencySignature uint64
	// DependencyName is the failed prerequisite's declared name, for
	// human-readable error messages.
	DependencyName string
	// Cause is the original failure (a *TaskFailedError or a nested
	// *DependencyFailedError, if the failure propagated through more than
	// one hop).
	Cause error
}

func (e *DependencyFailedError) Error() string {
	return fmt.Sprintf("titanium: dependency %q (sig %016x) failed: %v", e.DependencyName, e.DependencySignature, e.Cause)
}

func (e *DependencyFailedError) Unwrap() error { return e.Cause }

// UnhashableValueError names the offending Go type for a value the Value
// Hasher does not know how to encode.
type UnhashableValueError struct {
	GoType string
}

func (e *UnhashableValueError) Error() string {
	return fmt.Sprintf("titanium: unhashable value of type %s", e.GoType)
}

func (e *UnhashableValueError) Unwrap() error { return ErrUnhashableValue }

// CacheCorruptionError names the store entry and the reason validation
// failed.
type CacheCorruptionError struct {
	Signature uint64
	Reason    string
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("titanium: cache entry %016x corrupt: %s", e.Signature, e.Reason)
}

func (e *CacheCorruptionError) Unwrap() error { return ErrCacheCorruption }
