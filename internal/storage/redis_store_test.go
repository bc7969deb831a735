package storage

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRunKey(t *testing.T) {
	if got := runKey("abc-123"); got != "run:abc-123" {
		t.Errorf("runKey() = %q, want run:abc-123", got)
	}
}

func TestDecodeRuns(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	first := newRun("run-1", created)
	second := newRun("run-3", created.Add(time.Minute))

	encode := func(v interface{}) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return string(data)
	}

	ids := []string{"run-1", "run-2", "run-3"}
	values := []interface{}{encode(first), nil, encode(second)}

	runs, expired, err := decodeRuns(ids, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-3" {
		t.Errorf("expected list order preserved, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[0].CreatedAt.Equal(created) || runs[0].Direction != first.Direction {
		t.Errorf("run fields not restored: %+v", runs[0])
	}
	if len(expired) != 1 || expired[0] != "run-2" {
		t.Errorf("expected run-2 reported expired, got %v", expired)
	}
}

func TestDecodeRuns_Errors(t *testing.T) {
	if _, _, err := decodeRuns([]string{"a", "b"}, []interface{}{nil}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, _, err := decodeRuns([]string{"a"}, []interface{}{"{not json"}); err == nil {
		t.Error("expected error for corrupt run")
	}
}

func TestDecodeRuns_Empty(t *testing.T) {
	runs, expired, err := decodeRuns(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs == nil || len(runs) != 0 || len(expired) != 0 {
		t.Errorf("expected empty non-nil runs, got %v %v", runs, expired)
	}
}
