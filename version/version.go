package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/lexcell/errors"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Version != "dev" {
		return fmt.Sprintf("lexcell %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
	}
	return fmt.Sprintf("lexcell dev (commit %s, built %s)", i.CommitHash, i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Compatible checks that a dataset written by lexcell version stored can be
// extended by lexcell version running. Development builds and datasets without
// a recorded version are always accepted.
//
// A dataset is compatible when it was written by the same major version (or,
// before 1.0, the same minor version) and not by a newer release.
func Compatible(stored, running string) error {
	if stored == "" || stored == "dev" || running == "dev" {
		return nil
	}

	run, err := semver.NewVersion(running)
	if err != nil {
		return errors.Wrapf(err, "invalid lexcell version %s", running)
	}
	have, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Wrapf(errors.ErrIncompatibleDataset, "dataset version %q is not a semantic version", stored)
	}

	floor := fmt.Sprintf("%d.0.0", run.Major())
	if run.Major() == 0 {
		floor = fmt.Sprintf("0.%d.0", run.Minor())
	}
	constraint, err := semver.NewConstraint(fmt.Sprintf(">= %s, <= %s", floor, run.String()))
	if err != nil {
		return errors.Wrap(err, "build version constraint")
	}

	if !constraint.Check(have) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleDataset, "dataset written by lexcell %s, running %s", stored, running),
			"import into a new database or use lexcell %s", stored)
	}
	return nil
}
