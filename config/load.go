package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"nmlc/common"
	"nmlc/report"
)

// tomlProfileFile represents the profile file as it is encoded in TOML.
type tomlProfileFile struct {
	Diagnostics *tomlDiagnostics `toml:"diagnostics"`
	Generate    *tomlGenerate    `toml:"generate"`
	Version     string           `toml:"nmlc-version"`
}

// tomlDiagnostics represents the `[diagnostics]` table.
type tomlDiagnostics struct {
	LogLevel         string `toml:"log-level"`
	WarnUnused       *bool  `toml:"warn-unused"`
	WarningsAsErrors bool   `toml:"warnings-as-errors"`
}

// tomlGenerate represents the `[generate]` table.
type tomlGenerate struct {
	Jobs   int `toml:"jobs"`
	MaxIDs int `toml:"max-ids"`
}

// LoadProfile loads and validates the profile file in the directory at path.
// If there is no profile file, the default profile is returned.
func LoadProfile(path string) (*Profile, error) {
	buff, err := os.ReadFile(filepath.Join(path, common.ProfileFileName))
	if errors.Is(err, os.ErrNotExist) {
		return DefaultProfile(), nil
	} else if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	return ParseProfile(buff)
}

// ParseProfile decodes and validates the TOML contents of a profile file.
func ParseProfile(buff []byte) (*Profile, error) {
	tpf := &tomlProfileFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	prof := DefaultProfile()

	if tpf.Version != "" && tpf.Version != common.NMLCVersion {
		return nil, fmt.Errorf("profile targets nmlc v%s but this is nmlc v%s", tpf.Version, common.NMLCVersion)
	}

	if d := tpf.Diagnostics; d != nil {
		if d.LogLevel != "" {
			if !isValidLogLevel(d.LogLevel) {
				return nil, fmt.Errorf("invalid log level: `%s`", d.LogLevel)
			}

			prof.LogLevel = report.ParseLogLevel(d.LogLevel)
		}

		if d.WarnUnused != nil {
			prof.WarnUnused = *d.WarnUnused
		}

		prof.WarningsAsErrors = d.WarningsAsErrors
	}

	if g := tpf.Generate; g != nil {
		if g.Jobs < 0 {
			return nil, errors.New("generate.jobs must not be negative")
		} else if g.Jobs > 0 {
			prof.Jobs = g.Jobs
		}

		if g.MaxIDs < 0 || g.MaxIDs > common.MaxActionIDs {
			return nil, fmt.Errorf("generate.max-ids must be between 1 and %d", common.MaxActionIDs)
		} else if g.MaxIDs > 0 {
			prof.MaxIDs = g.MaxIDs
		}
	}

	return prof, nil
}

func isValidLogLevel(name string) bool {
	switch name {
	case "silent", "error", "warn", "warning", "verbose":
		return true
	}

	return false
}
