// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the normalization engine as MCP tools.
package tool

import (
	"fmt"

	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/normalize"
	"github.com/gemaraproj/fieldmap/internal/source"
)

// Toolset holds what the tool handlers share: an optional default profile,
// the engine options and the source decoders.
type Toolset struct {
	profile *mapping.Profile
	opts    []normalize.Option
	sources *source.Registry
}

// NewToolset creates a Toolset. profile may be nil, in which case every call
// must carry its own profile.
func NewToolset(profile *mapping.Profile, opts ...normalize.Option) *Toolset {
	return &Toolset{
		profile: profile,
		opts:    opts,
		sources: source.Default(),
	}
}

// resolveProfile parses an inline profile, falling back to the default.
func (t *Toolset) resolveProfile(text string) (*mapping.Profile, error) {
	if text != "" {
		p, err := mapping.Parse([]byte(text))
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	if t.profile == nil {
		return nil, fmt.Errorf("profile is required: no default profile configured")
	}
	return t.profile, nil
}
