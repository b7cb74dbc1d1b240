package safety

import (
	"errors"
	"strings"
	"testing"

	"github.com/origenlabs/origen/internal/domain"
)

func newDefaultMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine(DefaultLevels(), DefaultResources())
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func TestEvaluate_HighSeverityTriggersAlert(t *testing.T) {
	m := newDefaultMachine(t)

	decision := m.Evaluate("Últimamente me quiero morir y no sé qué hacer")
	if !decision.Triggered {
		t.Fatal("expected a triggered decision")
	}
	if decision.Severity != "high" {
		t.Errorf("severity = %q, want high", decision.Severity)
	}
	if !decision.AlertRequired {
		t.Error("high severity must require an alert")
	}
	if len(decision.MatchedTerms) == 0 || !strings.Contains(decision.MatchedTerms[0], "me quiero morir") {
		t.Errorf("matched terms = %v", decision.MatchedTerms)
	}
	if !strings.Contains(decision.Message, "Recursos de apoyo:") {
		t.Errorf("message missing resource list: %q", decision.Message)
	}
	if !strings.Contains(decision.Message, "123") {
		t.Errorf("message missing emergency line: %q", decision.Message)
	}
	if len(decision.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

func TestEvaluate_LowSeverityNoAlert(t *testing.T) {
	m := newDefaultMachine(t)

	decision := m.Evaluate("estoy muy triste últimamente")
	if !decision.Triggered {
		t.Fatal("expected a triggered decision")
	}
	if decision.Severity != "low" {
		t.Errorf("severity = %q, want low", decision.Severity)
	}
	if decision.AlertRequired {
		t.Error("low severity must not require an alert")
	}
}

func TestEvaluate_CaseInsensitive(t *testing.T) {
	m := newDefaultMachine(t)

	decision := m.Evaluate("NO PUEDO MAS con esta situación")
	if !decision.Triggered || decision.Severity != "moderate" {
		t.Errorf("got severity %q triggered=%v, want moderate", decision.Severity, decision.Triggered)
	}
}

func TestEvaluate_HighestSeverityWins(t *testing.T) {
	m := newDefaultMachine(t)

	// Matches both high and low patterns; priority order decides.
	decision := m.Evaluate("me quiero morir y estoy muy triste")
	if decision.Severity != "high" {
		t.Errorf("severity = %q, want high", decision.Severity)
	}
}

func TestEvaluate_NoMatchIsUntriggered(t *testing.T) {
	m := newDefaultMachine(t)

	decision := m.Evaluate("¿a qué hora abre la biblioteca?")
	if decision.Triggered {
		t.Errorf("unexpected trigger: %+v", decision)
	}
	if decision.Message != "" || decision.AlertRequired {
		t.Errorf("untriggered decision carries payload: %+v", decision)
	}
}

func TestEvaluate_EmptyMessage(t *testing.T) {
	m := newDefaultMachine(t)

	if decision := m.Evaluate("   "); decision.Triggered {
		t.Errorf("blank message triggered: %+v", decision)
	}
}

func TestEvaluate_ResourcesDeduplicated(t *testing.T) {
	m := newDefaultMachine(t)

	// This resource appears in both the level resources and the global list.
	decision := m.Evaluate("no encuentro salida")
	const resource = "Línea 106 - atención en salud mental (Bogotá)"
	if got := strings.Count(decision.Message, resource); got != 1 {
		t.Errorf("resource appears %d times, want 1", got)
	}
}

func TestNewMachine_EmptyLevelSet(t *testing.T) {
	if _, err := NewMachine(nil, nil); !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}
}

func TestNewMachine_DuplicatePriority(t *testing.T) {
	levels := []Level{
		{Name: "a", Priority: 1, Patterns: []string{`x`}},
		{Name: "b", Priority: 1, Patterns: []string{`y`}},
	}
	if _, err := NewMachine(levels, nil); !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}
}

func TestNewMachine_MalformedPattern(t *testing.T) {
	levels := []Level{{Name: "a", Priority: 0, Patterns: []string{`(`}}}
	if _, err := NewMachine(levels, nil); !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}
}

func TestEvaluate_EmptyResponseFallsBack(t *testing.T) {
	levels := []Level{{Name: "a", Label: "A", Priority: 0, Patterns: []string{`\btest\b`}}}
	m, err := NewMachine(levels, nil)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	decision := m.Evaluate("this is a test")
	if !decision.Triggered {
		t.Fatal("expected trigger")
	}
	if decision.Message == "" {
		t.Error("expected fallback containment response")
	}
}
