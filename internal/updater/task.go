package updater

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	// FlagApplyUpdate marks an invocation as the updater role.
	FlagApplyUpdate = "apply-update"
	// FlagSkipUpdate disables the startup update check.
	FlagSkipUpdate = "skip-update"
)

// UpdateTask is everything the updater process needs, passed to it on the
// command line.
type UpdateTask struct {
	DownloadURL      string
	TargetPath       string
	RemoteIdentifier string
	// TaskID correlates the log lines of the launcher and the updater.
	TaskID      string
	Passthrough []string
}

// NewUpdateTask builds a task for installing a over target.
func NewUpdateTask(a Artifact, target string, passthrough []string) UpdateTask {
	return UpdateTask{
		DownloadURL:      a.DownloadURL,
		TargetPath:       target,
		RemoteIdentifier: a.RemoteIdentifier(),
		TaskID:           uuid.NewString(),
		Passthrough:      passthrough,
	}
}

// Args encodes the task as updater-role arguments.
func (t UpdateTask) Args() []string {
	args := []string{
		"--" + FlagApplyUpdate,
		"--url", t.DownloadURL,
		"--target", t.TargetPath,
		"--remote-version", t.RemoteIdentifier,
	}
	if t.TaskID != "" {
		args = append(args, "--task-id", t.TaskID)
	}
	args = append(args, "--")
	return append(args, t.Passthrough...)
}

// splitAtDash separates our own arguments from the passthrough tail.
func splitAtDash(args []string) (own, rest []string, dashed bool) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:], true
		}
	}
	return args, nil, false
}

// IsUpdaterInvocation reports whether args carry the apply-update marker.
func IsUpdaterInvocation(args []string) bool {
	own, _, _ := splitAtDash(args)
	for _, a := range own {
		if a == "--"+FlagApplyUpdate {
			return true
		}
	}
	return false
}

// HasSkipFlag reports whether args ask to skip the update check.
func HasSkipFlag(args []string) bool {
	own, _, _ := splitAtDash(args)
	for _, a := range own {
		if a == "--"+FlagSkipUpdate || a == "--"+FlagSkipUpdate+"=true" {
			return true
		}
	}
	return false
}

// ParseTask decodes updater-role arguments produced by UpdateTask.Args.
func ParseTask(args []string) (UpdateTask, error) {
	own, rest, _ := splitAtDash(args)

	fs := pflag.NewFlagSet(FlagApplyUpdate, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var t UpdateTask
	fs.Bool(FlagApplyUpdate, false, "run as updater")
	fs.StringVar(&t.DownloadURL, "url", "", "artifact download URL")
	fs.StringVar(&t.TargetPath, "target", "", "executable to replace")
	fs.StringVar(&t.RemoteIdentifier, "remote-version", "", "identifier to record once installed")
	fs.StringVar(&t.TaskID, "task-id", "", "correlation id")

	if err := fs.Parse(own); err != nil {
		return UpdateTask{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if t.DownloadURL == "" || t.TargetPath == "" {
		return UpdateTask{}, fmt.Errorf("%w: --url and --target are required", ErrInvalidTask)
	}

	t.Passthrough = append([]string(nil), rest...)
	return t, nil
}
