// Persistence of status transitions: an append-only JSONL history file for
// cheap tailing, and a sqlite database for queries from the web API.
package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	camera_id TEXT NOT NULL,
	machine_id TEXT NOT NULL,
	region_name TEXT NOT NULL,
	status TEXT NOT NULL,
	confidence REAL NOT NULL,
	brightness REAL NOT NULL,
	old_status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_detections_timestamp ON detections (timestamp);`

// Storage writes every transition to both backends. Either backend is
// optional: an empty path in the configuration disables it.
type Storage struct {
	mu          sync.Mutex
	historyFile string
	db          *sql.DB
}

func New(config models.StorageConfig) (*Storage, error) {
	storage := &Storage{
		historyFile: config.HistoryFile,
	}

	if storage.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(storage.historyFile), 0755); err != nil {
			return nil, err
		}
	}

	if config.DatabasePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.DatabasePath), 0755); err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite3", config.DatabasePath)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, err
		}
		storage.db = db
	}

	return storage, nil
}

// Record persists a transition to every enabled backend. A failing backend
// is logged and does not block the other one.
func (storage *Storage) Record(transition models.StatusTransition) {
	if err := storage.AppendTransition(transition); err != nil {
		log.Log.Error("storage.main.Record(): history file write failed: " + err.Error())
	}
	if err := storage.SaveTransition(transition); err != nil {
		log.Log.Error("storage.main.Record(): database insert failed: " + err.Error())
	}
}

// AppendTransition writes one JSON line to the history file.
func (storage *Storage) AppendTransition(transition models.StatusTransition) error {
	if storage.historyFile == "" {
		return nil
	}

	storage.mu.Lock()
	defer storage.mu.Unlock()

	file, err := os.OpenFile(storage.historyFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	line, err := json.Marshal(transition)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = file.Write(line)
	return err
}

// SaveTransition inserts one row into the detections table.
func (storage *Storage) SaveTransition(transition models.StatusTransition) error {
	if storage.db == nil {
		return nil
	}
	_, err := storage.db.Exec(
		`INSERT INTO detections (timestamp, camera_id, machine_id, region_name, status, confidence, brightness, old_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		transition.Timestamp,
		transition.CameraId,
		transition.MachineId,
		transition.RegionName,
		string(transition.NewStatus),
		transition.Confidence,
		transition.Brightness,
		string(transition.OldStatus),
	)
	return err
}

// RecentTransitions returns the newest rows first, capped at limit.
func (storage *Storage) RecentTransitions(limit int) ([]models.StatusTransition, error) {
	if storage.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := storage.db.Query(
		`SELECT timestamp, camera_id, machine_id, region_name, status, confidence, brightness, old_status
		 FROM detections ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transitions := []models.StatusTransition{}
	for rows.Next() {
		var transition models.StatusTransition
		var newStatus, oldStatus string
		if err := rows.Scan(
			&transition.Timestamp,
			&transition.CameraId,
			&transition.MachineId,
			&transition.RegionName,
			&newStatus,
			&transition.Confidence,
			&transition.Brightness,
			&oldStatus,
		); err != nil {
			return nil, err
		}
		transition.NewStatus = models.Status(newStatus)
		transition.OldStatus = models.Status(oldStatus)
		transitions = append(transitions, transition)
	}
	return transitions, rows.Err()
}

func (storage *Storage) Close() error {
	if storage.db == nil {
		return nil
	}
	return storage.db.Close()
}
