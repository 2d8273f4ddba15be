package models

import "testing"

func TestSummaryRecord(t *testing.T) {
	var s Summary
	for _, o := range []Outcome{
		OutcomeInserted, OutcomeInserted, OutcomeUpdated, OutcomeUnchanged,
		OutcomeFailedValidation, OutcomeFailedWrite, OutcomeFailedWrite,
	} {
		s.Record(o)
	}

	tests := []struct {
		outcome Outcome
		want    int
	}{
		{OutcomeInserted, 2},
		{OutcomeUpdated, 1},
		{OutcomeUnchanged, 1},
		{OutcomeFailedValidation, 1},
		{OutcomeFailedWrite, 2},
		{OutcomeWouldWrite, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			if got := s.Count(tt.outcome); got != tt.want {
				t.Errorf("Count(%s) = %d, want %d", tt.outcome, got, tt.want)
			}
		})
	}

	if s.Failed() != 3 {
		t.Errorf("Failed() = %d, want 3", s.Failed())
	}
	if s.Processed() != 7 {
		t.Errorf("Processed() = %d, want 7", s.Processed())
	}
	want := "Inserted: 2, Updated: 1, Unchanged: 1, Failed: 3 (validation: 1, write: 2)"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}

func TestSummaryDryRunString(t *testing.T) {
	s := Summary{DryRun: true}
	s.Record(OutcomeWouldWrite)
	s.Record(OutcomeFailedValidation)

	want := "Dry run. Valid: 1, Failed: 1 (validation: 1)"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}
