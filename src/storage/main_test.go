package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledwatch/agent/src/models"
)

func testTransition(status models.Status) models.StatusTransition {
	return models.StatusTransition{
		CameraId:   "line-1",
		MachineId:  "press-4",
		RegionName: "status-led",
		OldStatus:  models.StatusGreen,
		NewStatus:  status,
		Confidence: 0.92,
		Brightness: 120.5,
		Timestamp:  "2026-08-30T10:00:00+00:00",
	}
}

func TestAppendTransitionWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(models.StorageConfig{HistoryFile: filepath.Join(dir, "history.jsonl")})
	if err != nil {
		t.Fatalf("failed to create storage: %s", err)
	}
	defer storage.Close()

	if err := storage.AppendTransition(testTransition(models.StatusRed)); err != nil {
		t.Fatalf("append failed: %s", err)
	}
	if err := storage.AppendTransition(testTransition(models.StatusOff)); err != nil {
		t.Fatalf("append failed: %s", err)
	}

	file, err := os.Open(filepath.Join(dir, "history.jsonl"))
	if err != nil {
		t.Fatalf("history file missing: %s", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var transition models.StatusTransition
		if err := json.Unmarshal(scanner.Bytes(), &transition); err != nil {
			t.Fatalf("line %d is not valid JSON: %s", lines+1, err)
		}
		if transition.CameraId != "line-1" {
			t.Fatalf("unexpected camera id %s", transition.CameraId)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 history lines, got %d", lines)
	}
}

func TestSaveAndQueryTransitions(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(models.StorageConfig{DatabasePath: filepath.Join(dir, "detections.db")})
	if err != nil {
		t.Fatalf("failed to create storage: %s", err)
	}
	defer storage.Close()

	if err := storage.SaveTransition(testTransition(models.StatusRed)); err != nil {
		t.Fatalf("insert failed: %s", err)
	}
	if err := storage.SaveTransition(testTransition(models.StatusFlashingRed)); err != nil {
		t.Fatalf("insert failed: %s", err)
	}

	transitions, err := storage.RecentTransitions(10)
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(transitions))
	}
	if transitions[0].NewStatus != models.StatusFlashingRed {
		t.Fatalf("expected newest row first, got %s", transitions[0].NewStatus)
	}
}

func TestDisabledBackendsAreNoops(t *testing.T) {
	storage, err := New(models.StorageConfig{})
	if err != nil {
		t.Fatalf("failed to create storage: %s", err)
	}
	defer storage.Close()

	if err := storage.AppendTransition(testTransition(models.StatusGreen)); err != nil {
		t.Fatalf("disabled history backend returned an error: %s", err)
	}
	if err := storage.SaveTransition(testTransition(models.StatusGreen)); err != nil {
		t.Fatalf("disabled database backend returned an error: %s", err)
	}
	transitions, err := storage.RecentTransitions(5)
	if err != nil || transitions != nil {
		t.Fatalf("expected no rows from a disabled database, got %v, %v", transitions, err)
	}
}
