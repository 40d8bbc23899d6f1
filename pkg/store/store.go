// Package store persists pipeline run history: one record per
// Runner.Execute call, covering the stats and outcome of each stage so
// a CLI or httpapi caller can look a past run up by ID.
//
// Two backends satisfy the same Store interface, mirroring the
// teacher's session package's memory/file/redis split: MongoStore for
// multi-instance deployments (go.mongodb.org/mongo-driver) and
// FileStore for standalone CLI use, both storing the same Run record.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run record does not exist.
var ErrNotFound = errors.New("run not found")

// Status is the outcome of a pipeline run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run records one pipeline execution.
type Run struct {
	ID          string           `json:"id" bson:"_id"`
	NetworkHash string           `json:"network_hash" bson:"network_hash"`
	Status      Status           `json:"status" bson:"status"`
	ErrorCode   string           `json:"error_code,omitempty" bson:"error_code,omitempty"`
	ErrorMsg    string           `json:"error_message,omitempty" bson:"error_message,omitempty"`
	NodeCount   int              `json:"node_count" bson:"node_count"`
	EdgeCount   int              `json:"edge_count" bson:"edge_count"`
	DurationMS  int64            `json:"duration_ms" bson:"duration_ms"`
	Stages      map[string]int64 `json:"stages,omitempty" bson:"stages,omitempty"` // stage name -> ms
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Store is the interface for run-history backends.
type Store interface {
	// Put creates or overwrites a run record.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns the most recent runs, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewID generates a random run ID.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
