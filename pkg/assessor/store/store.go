// Package store persists completed assessments to SQLite and serves
// recent nearby results for reuse, so a repeated request for roughly the
// same location does not re-run the provider pipeline.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
)

// Assessment kinds persisted in the store.
const (
	KindSolar = "solar"
	KindWind  = "wind"
)

// Record is one persisted assessment.
type Record struct {
	ID        int64
	Kind      string
	Latitude  float64
	Longitude float64
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Store persists assessments using SQLite.
type Store struct {
	db       *sql.DB
	path     string
	mutex    sync.RWMutex
	prepared map[string]*sql.Stmt
}

// New opens (creating if needed) the assessment store at path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_sync=NORMAL&_cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	s := &Store{
		db:       db,
		path:     path,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %v", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %v", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		payload TEXT NOT NULL, -- JSON blob of the assessment result
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_kind_created_at ON assessments(kind, created_at);
	CREATE INDEX IF NOT EXISTS idx_created_at ON assessments(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	statements := map[string]string{
		"insert": `
			INSERT INTO assessments (kind, latitude, longitude, payload, created_at)
			VALUES (?, ?, ?, ?, ?)
		`,
		"select_recent": `
			SELECT id, kind, latitude, longitude, payload, created_at
			FROM assessments
			WHERE kind = ? AND created_at >= ?
			ORDER BY created_at DESC
		`,
		"select_latest": `
			SELECT id, kind, latitude, longitude, payload, created_at
			FROM assessments
			ORDER BY created_at DESC
			LIMIT ?
		`,
		"cleanup": `
			DELETE FROM assessments
			WHERE created_at < ?
		`,
	}

	for name, query := range statements {
		stmt, err := s.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %v", name, err)
		}
		s.prepared[name] = stmt
	}

	return nil
}

// Save persists an assessment result.
func (s *Store) Save(kind string, lat, lon float64, result interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %v", err)
	}

	if _, err := s.prepared["insert"].Exec(kind, lat, lon, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store assessment: %v", err)
	}

	klog.V(3).InfoS("Stored assessment", "kind", kind, "lat", lat, "lon", lon)
	return nil
}

// Nearby returns the most recent assessment of the given kind within
// radiusKm of the location and no older than maxAge, if any.
func (s *Store) Nearby(kind string, lat, lon, radiusKm float64, maxAge time.Duration) (*Record, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	rows, err := s.prepared["select_recent"].Query(kind, cutoff)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query assessments: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Latitude, &rec.Longitude, &payload, &rec.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("failed to scan assessment: %v", err)
		}
		if common.HaversineKm(lat, lon, rec.Latitude, rec.Longitude) <= radiusKm {
			rec.Payload = json.RawMessage(payload)
			klog.V(2).InfoS("Reusing nearby assessment",
				"kind", kind,
				"requestedLat", lat, "requestedLon", lon,
				"storedLat", rec.Latitude, "storedLon", rec.Longitude,
				"age", time.Since(rec.CreatedAt).String())
			return &rec, true, nil
		}
	}

	return nil, false, rows.Err()
}

// Latest returns up to limit most recent assessments across all kinds.
func (s *Store) Latest(limit int) ([]Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows, err := s.prepared["select_latest"].Query(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %v", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Latitude, &rec.Longitude, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %v", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Cleanup removes assessments older than retentionDays.
func (s *Store) Cleanup(retentionDays int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result, err := s.prepared["cleanup"].Exec(cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup assessments: %v", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		klog.V(2).InfoS("Cleaned up old assessments", "removed", removed, "retentionDays", retentionDays)
	}
	return nil
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, stmt := range s.prepared {
		stmt.Close()
	}
	return s.db.Close()
}
