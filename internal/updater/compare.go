package updater

// NeedsUpdate decides whether candidate should replace what is installed.
//
// current is the running binary's own version, or nil when it could not be
// read. The rules fall back from version ordering to identifier equality so
// that unversioned artifacts and stripped binaries still converge.
func NeedsUpdate(current *Version, candidate Artifact, state InstalledState) bool {
	installed := state.Identifier()

	if candidate.NameVersion == nil && candidate.ReleaseTag == installed {
		return false
	}

	switch {
	case current != nil && candidate.Version != nil:
		return candidate.Version.IsNewerThan(*current)
	case candidate.Version != nil:
		return candidate.RemoteIdentifier() != installed
	default:
		// Known current with unknown candidate also lands here.
		return candidate.ReleaseTag != installed
	}
}
