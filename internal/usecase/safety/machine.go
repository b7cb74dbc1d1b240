// Package safety implements the crisis-detection state machine: a
// priority-ordered set of severity levels, each a bundle of regular
// expressions with a fixed containment response. Evaluation is a pure
// function of the message; the machine holds no mutable state after
// construction.
package safety

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/origenlabs/origen/internal/domain"
)

const fallbackResponse = "Gracias por contarme cómo te sientes. Es fundamental que busques apoyo profesional y te" +
	" acerques a los servicios de emergencia o a una persona de confianza."

type compiledLevel struct {
	level    Level
	patterns []*regexp.Regexp
}

// Machine evaluates messages against severity levels in ascending priority
// order. The first level with any matching pattern decides the outcome;
// lower levels are never consulted.
type Machine struct {
	levels    []compiledLevel
	resources []string
}

// NewMachine compiles the level set. Duplicate priorities, empty level sets,
// and malformed patterns are configuration errors: severity ordering must be
// total or escalation becomes ambiguous.
func NewMachine(levels []Level, resources []string) (*Machine, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no safety levels defined", domain.ErrConfigInvalid)
	}

	seen := make(map[int]string, len(levels))
	compiled := make([]compiledLevel, 0, len(levels))
	for _, lvl := range levels {
		if prev, dup := seen[lvl.Priority]; dup {
			return nil, fmt.Errorf("%w: safety levels %q and %q share priority %d",
				domain.ErrConfigInvalid, prev, lvl.Name, lvl.Priority)
		}
		seen[lvl.Priority] = lvl.Name

		cl := compiledLevel{level: lvl, patterns: make([]*regexp.Regexp, 0, len(lvl.Patterns))}
		for _, p := range lvl.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%w: safety level %q pattern %q: %v",
					domain.ErrConfigInvalid, lvl.Name, p, err)
			}
			cl.patterns = append(cl.patterns, re)
		}
		compiled = append(compiled, cl)
	}

	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].level.Priority < compiled[j].level.Priority
	})

	return &Machine{levels: compiled, resources: resources}, nil
}

// Evaluate analyzes a message and returns the required safety action. An
// empty message or one matching no pattern yields an untriggered decision.
func (m *Machine) Evaluate(message string) domain.SafetyDecision {
	if strings.TrimSpace(message) == "" {
		return domain.SafetyDecision{}
	}

	for _, cl := range m.levels {
		var matched []string
		for _, re := range cl.patterns {
			if term := re.FindString(message); term != "" {
				matched = append(matched, term)
			}
		}
		if len(matched) == 0 {
			continue
		}

		return domain.SafetyDecision{
			Triggered:       true,
			Severity:        cl.level.Name,
			Label:           cl.level.Label,
			Message:         m.buildResponse(cl.level),
			MatchedTerms:    matched,
			Recommendations: cl.level.Recommendations,
			AlertRequired:   cl.level.AlertRequired,
		}
	}

	return domain.SafetyDecision{}
}

// buildResponse appends the deduplicated resource list to the level's
// containment text.
func (m *Machine) buildResponse(lvl Level) string {
	base := strings.TrimSpace(lvl.Response)
	if base == "" {
		base = fallbackResponse
	}

	resources := make([]string, 0, len(lvl.Resources)+len(m.resources))
	seen := make(map[string]struct{})
	for _, r := range lvl.Resources {
		if _, dup := seen[r]; !dup {
			seen[r] = struct{}{}
			resources = append(resources, r)
		}
	}
	for _, r := range m.resources {
		if _, dup := seen[r]; !dup {
			seen[r] = struct{}{}
			resources = append(resources, r)
		}
	}

	if len(resources) > 0 {
		base += " Recursos de apoyo: " + strings.Join(resources, "; ") + "."
	}
	return base
}
