package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockLeadsChecker struct {
	err error
}

func (m *mockLeadsChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name       string
		dbErr      error
		leads      LeadsChecker
		wantStatus Status
		wantDB     CheckResult
		wantLeads  CheckResult // empty: check absent
	}{
		{"all healthy", nil, &mockLeadsChecker{}, Healthy, CheckOK, CheckOK},
		{"db down", down, &mockLeadsChecker{}, Degraded, CheckError, CheckOK},
		{"broker down", nil, &mockLeadsChecker{err: down}, Degraded, CheckOK, CheckError},
		{"both down", down, &mockLeadsChecker{err: down}, Degraded, CheckError, CheckError},
		{"no broker", nil, nil, Healthy, CheckOK, ""},
		{"no broker, db down", down, nil, Degraded, CheckError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockDBPinger{err: tt.dbErr}, tt.leads).Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["database"] != tt.wantDB {
				t.Errorf("database = %q, want %q", r.Checks["database"], tt.wantDB)
			}
			got, ok := r.Checks["leads"]
			if tt.wantLeads == "" {
				if ok {
					t.Error("leads check should be absent without a broker")
				}
				return
			}
			if got != tt.wantLeads {
				t.Errorf("leads = %q, want %q", got, tt.wantLeads)
			}
		})
	}
}
