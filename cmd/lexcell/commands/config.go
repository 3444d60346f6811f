package commands

import (
	"github.com/teranos/lexcell/am"
	"github.com/teranos/lexcell/errors"
)

// loadConfig loads the layered configuration and applies a dataset profile on
// top when profilePath is set.
func loadConfig(profilePath string) (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to load config"),
			"run `lexcell am where` to see which files are read")
	}
	if profilePath == "" {
		return cfg, nil
	}

	profile, err := am.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	// copy so the cached global config keeps its file values
	merged := *cfg
	profile.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, errors.Wrapf(err, "profile %s", profilePath)
	}
	return &merged, nil
}
