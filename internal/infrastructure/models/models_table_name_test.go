package models

import "testing"

func TestTableNames(t *testing.T) {
	if got := (ProcessedEvent{}).TableName(); got != "processed_events" {
		t.Fatalf("unexpected ProcessedEvent table name: %s", got)
	}
}
