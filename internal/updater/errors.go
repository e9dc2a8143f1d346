// Package updater implements the self-update protocol for the dashboard
// executable: release discovery, artifact selection, the update decision,
// and the out-of-process installer that swaps the binary on disk.
package updater

import "errors"

var (
	// ErrNetwork indicates the feed or a download could not be reached or was interrupted.
	ErrNetwork = errors.New("network error")

	// ErrParse indicates a malformed feed response.
	ErrParse = errors.New("parse error")

	// ErrFileSystem indicates a rename, copy, or write failure.
	ErrFileSystem = errors.New("filesystem error")

	// ErrSpawn indicates a process could not be launched.
	ErrSpawn = errors.New("spawn error")

	// ErrInvalidTask indicates an updater invocation with missing or malformed arguments.
	ErrInvalidTask = errors.New("invalid update task")
)

// ErrorKind classifies an updater error.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindParse
	KindFileSystem
	KindSpawn
	KindInvalidTask
)

// String returns the kind name used in logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindFileSystem:
		return "filesystem"
	case KindSpawn:
		return "spawn"
	case KindInvalidTask:
		return "invalid_task"
	default:
		return "unknown"
	}
}

// KindOf reports which kind of failure err wraps.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrFileSystem):
		return KindFileSystem
	case errors.Is(err, ErrSpawn):
		return KindSpawn
	case errors.Is(err, ErrInvalidTask):
		return KindInvalidTask
	default:
		return KindUnknown
	}
}
