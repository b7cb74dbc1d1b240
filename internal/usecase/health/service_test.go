package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockGeneratorChecker struct {
	configured bool
}

func (m *mockGeneratorChecker) IsConfigured() bool { return m.configured }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockEmbeddingChecker{}, &mockGeneratorChecker{configured: true})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	for _, name := range []string{"storage", "embedding", "generation"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("check %q = %q, want %q", name, report.Checks[name], CheckOK)
		}
	}
}

func TestCheck_StorageFailureDegrades(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("connection refused")}, &mockEmbeddingChecker{}, &mockGeneratorChecker{configured: true})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["storage"] != CheckError {
		t.Errorf("storage check = %q, want %q", report.Checks["storage"], CheckError)
	}
}

func TestCheck_UnconfiguredGeneratorDegrades(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockEmbeddingChecker{}, &mockGeneratorChecker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["generation"] != CheckError {
		t.Errorf("generation check = %q, want %q", report.Checks["generation"], CheckError)
	}
}

func TestCheck_NilOptionalCheckersSkipped(t *testing.T) {
	svc := New(&mockStorePinger{}, nil, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("embedding check present for nil checker")
	}
	if _, ok := report.Checks["generation"]; ok {
		t.Error("generation check present for nil checker")
	}
}
