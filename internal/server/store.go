package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"genelink/internal/dataset"
)

// DatasetNotFoundError reports a dataset name with no stored row.
type DatasetNotFoundError struct {
	Name string
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("dataset %q not found", e.Name)
}

// DatasetInfo is the listing view of one stored dataset.
type DatasetInfo struct {
	Name          string    `json:"name"`
	Disease       string    `json:"disease,omitempty"`
	MutationCount int       `json:"mutationCount"`
	SampleCount   int       `json:"sampleCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store persists datasets and users in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveDataset inserts or replaces the named dataset. The cohort itself is
// stored as a JSON payload; the counts are denormalized for cheap listings.
func (s *Store) SaveDataset(name, disease string, ds *dataset.Dataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset %q: %w", name, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO datasets (name, disease, payload, mutation_count, sample_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   disease = excluded.disease,
		   payload = excluded.payload,
		   mutation_count = excluded.mutation_count,
		   sample_count = excluded.sample_count,
		   updated_at = excluded.updated_at`,
		name, disease, string(payload), len(ds.Mutations), len(ds.Samples), now, now,
	)
	if err != nil {
		return fmt.Errorf("saving dataset %q: %w", name, err)
	}
	return nil
}

// ListDatasets returns listing info for every stored dataset, by name.
func (s *Store) ListDatasets() ([]DatasetInfo, error) {
	rows, err := s.db.Query(
		`SELECT name, disease, mutation_count, sample_count, updated_at
		 FROM datasets ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	infos := []DatasetInfo{}
	for rows.Next() {
		var info DatasetInfo
		var updated string
		if err := rows.Scan(&info.Name, &info.Disease, &info.MutationCount, &info.SampleCount, &updated); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// GetDataset loads the full cohort payload for one dataset.
func (s *Store) GetDataset(name string) (*dataset.Dataset, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM datasets WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &DatasetNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset %q: %w", name, err)
	}

	var ds dataset.Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset %q: %w", name, err)
	}
	return &ds, nil
}

// DeleteDataset removes a stored dataset. Absent names are not an error.
func (s *Store) DeleteDataset(name string) error {
	_, err := s.db.Exec(`DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting dataset %q: %w", name, err)
	}
	return nil
}

// UpsertUser stores a user with a salted password hash.
func (s *Store) UpsertUser(username, password string) error {
	salt := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO users (username, salt, password_hash, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		   salt = excluded.salt,
		   password_hash = excluded.password_hash`,
		username, salt, hashPassword(salt, password), now,
	)
	if err != nil {
		return fmt.Errorf("saving user %q: %w", username, err)
	}
	return nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both report false without distinguishing which.
func (s *Store) Authenticate(username, password string) (bool, error) {
	var salt, hash string
	err := s.db.QueryRow(
		`SELECT salt, password_hash FROM users WHERE username = ?`, username,
	).Scan(&salt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading user %q: %w", username, err)
	}

	expected := hashPassword(salt, password)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) == 1, nil
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}
