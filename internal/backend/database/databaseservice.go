package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jo-hoe/trademate/internal/report"
)

var (
	ErrSampleNotFound = errors.New("sample not found")
	ErrDuplicateLabel = errors.New("label already exists")
)

// DatabaseService persists the report samples of every granularity.
// Samples keep the order they were written in unless explicitly reordered.
type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// Samples returns the samples of g in rank order.
	Samples(ctx context.Context, g report.Granularity) ([]report.Sample, error)
	CountSamples(ctx context.Context, g report.Granularity) (int, error)

	// ReplaceSamples swaps all samples of g in a single transaction.
	ReplaceSamples(ctx context.Context, g report.Granularity, samples []report.Sample) error
	AppendSample(ctx context.Context, g report.Granularity, sample report.Sample) error
	DeleteSample(ctx context.Context, g report.Granularity, label string) error
	// ReorderSamples moves samples into the order of labels, which must name every sample of g.
	ReorderSamples(ctx context.Context, g report.Granularity, labels []string) error
}
