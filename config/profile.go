package config

import (
	"io"

	"nmlc/common"
	"nmlc/report"
)

// Profile is the build profile used by one compilation unit.
type Profile struct {
	// LogLevel is one of the enumerated report log levels.
	LogLevel int

	// WarnUnused indicates whether declarations that are never used should
	// produce a warning.
	WarnUnused bool

	// WarningsAsErrors promotes every warning to an error.
	WarningsAsErrors bool

	// Jobs is the number of declarations whose actions may be encoded
	// concurrently.  A value of 1 encodes sequentially.
	Jobs int

	// MaxIDs is the number of action IDs available per feature.
	MaxIDs int
}

// DefaultProfile returns the profile used in the absence of a profile file.
func DefaultProfile() *Profile {
	return &Profile{
		LogLevel:   report.LogLevelVerbose,
		WarnUnused: true,
		Jobs:       1,
		MaxIDs:     common.MaxActionIDs,
	}
}

// NewReporter creates a reporter writing to out that is configured by this
// profile.
func (p *Profile) NewReporter(out io.Writer) *report.Reporter {
	r := report.NewReporter(out, p.LogLevel)
	r.SetWarningsAsErrors(p.WarningsAsErrors)
	return r
}
