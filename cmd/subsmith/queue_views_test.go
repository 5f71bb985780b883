package main

import (
	"reflect"
	"testing"

	"subsmith/internal/ipc"
)

func TestBuildQueueStatusRowsOrdersPipeline(t *testing.T) {
	stats := map[string]int{
		"completed":    3,
		"pending":      2,
		"transcribing": 1,
		"mystery":      4,
	}

	rows := buildQueueStatusRows(stats)
	expected := [][]string{
		{"Pending", "2"},
		{"Transcribing", "1"},
		{"Completed", "3"},
		{"Mystery", "4"},
	}
	if !reflect.DeepEqual(rows, expected) {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestBuildQueueStatusRowsEmpty(t *testing.T) {
	if rows := buildQueueStatusRows(nil); rows != nil {
		t.Fatalf("expected nil rows, got %v", rows)
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":    "Pending",
		"extracting": "Extracting",
		"":           "",
		"two_words":  "Two Words",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Errorf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParsePositiveIDs(t *testing.T) {
	ids, err := parsePositiveIDs([]string{"1", " 42 "})
	if err != nil {
		t.Fatalf("parsePositiveIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1, 42}) {
		t.Fatalf("unexpected ids: %v", ids)
	}

	for _, bad := range []string{"0", "-3", "abc"} {
		if _, err := parsePositiveIDs([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestBuildQueueListRows(t *testing.T) {
	jobs := []ipc.QueueJob{
		{
			ID:              7,
			SourceName:      "lecture.mp4",
			ChatID:          1234,
			Language:        "km",
			Status:          "transcribing",
			ProgressStage:   "Transcribing speech",
			ProgressPercent: 40,
			CreatedAt:       "not-a-timestamp",
		},
	}

	rows := buildQueueListRows(jobs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row[0] != "7" || row[1] != "lecture.mp4" || row[2] != "1234" {
		t.Fatalf("unexpected identity columns: %v", row)
	}
	if row[4] != "Transcribing" {
		t.Fatalf("unexpected status label: %q", row[4])
	}
	if row[5] != "Transcribing speech (40%)" {
		t.Fatalf("unexpected progress column: %q", row[5])
	}
	if row[6] != "not-a-timestamp" {
		t.Fatalf("expected raw value for unparsable timestamp, got %q", row[6])
	}
}
