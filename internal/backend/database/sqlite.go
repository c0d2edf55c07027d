package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jo-hoe/trademate/internal/report"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" opens a separate database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS samples (
		granularity TEXT NOT NULL,
		label TEXT NOT NULL,
		value INTEGER NOT NULL,
		rank TEXT NOT NULL,
		PRIMARY KEY (granularity, label)
	)`)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS samples_rank ON samples (granularity, rank)`)
	if err != nil {
		return nil, err
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// sqlite creates the file on connect, a successful ping is enough
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) Samples(ctx context.Context, g report.Granularity) ([]report.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT label, value FROM samples WHERE granularity = ? ORDER BY rank", string(g))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	samples := []report.Sample{}
	for rows.Next() {
		var sample report.Sample
		if err := rows.Scan(&sample.Label, &sample.Value); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func (s *SQLiteDatabase) CountSamples(ctx context.Context, g report.Granularity) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM samples WHERE granularity = ?", string(g)).Scan(&count)
	return count, err
}

func (s *SQLiteDatabase) ReplaceSamples(ctx context.Context, g report.Granularity, samples []report.Sample) error {
	if _, err := report.NewDataset(g, samples); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM samples WHERE granularity = ?", string(g)); err != nil {
			return err
		}
		ranks := initialRanks(len(samples))
		for i, sample := range samples {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO samples (granularity, label, value, rank) VALUES (?, ?, ?, ?)",
				string(g), sample.Label, sample.Value, ranks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) AppendSample(ctx context.Context, g report.Granularity, sample report.Sample) error {
	if sample.Label == "" {
		return fmt.Errorf("sample has no label")
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM samples WHERE granularity = ? AND label = ?", string(g), sample.Label).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateLabel, sample.Label)
		}

		var last sql.NullString
		err = tx.QueryRowContext(ctx,
			"SELECT MAX(rank) FROM samples WHERE granularity = ?", string(g)).Scan(&last)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO samples (granularity, label, value, rank) VALUES (?, ?, ?, ?)",
			string(g), sample.Label, sample.Value, rankBetween(last.String, ""))
		return err
	})
}

func (s *SQLiteDatabase) DeleteSample(ctx context.Context, g report.Granularity, label string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM samples WHERE granularity = ? AND label = ?", string(g), label)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSampleNotFound, label)
	}
	return nil
}

func (s *SQLiteDatabase) ReorderSamples(ctx context.Context, g report.Granularity, labels []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := ranksOf(ctx, tx, g)
		if err != nil {
			return err
		}
		if len(labels) != len(current) {
			return fmt.Errorf("order names %d labels, %s has %d samples", len(labels), g, len(current))
		}
		for i, label := range labels {
			if _, ok := current[label]; !ok {
				return fmt.Errorf("%w: %q", ErrSampleNotFound, label)
			}
			if slices.Index(labels, label) != i {
				return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
			}
		}

		for label, rank := range rerank(current, labels) {
			if _, err := tx.ExecContext(ctx,
				"UPDATE samples SET rank = ? WHERE granularity = ? AND label = ?",
				rank, string(g), label); err != nil {
				return err
			}
		}
		return nil
	})
}

func ranksOf(ctx context.Context, tx *sql.Tx, g report.Granularity) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT label, rank FROM samples WHERE granularity = ?", string(g))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	ranks := make(map[string]string)
	for rows.Next() {
		var label, rank string
		if err := rows.Scan(&label, &rank); err != nil {
			return nil, err
		}
		ranks[label] = rank
	}
	return ranks, rows.Err()
}

func (s *SQLiteDatabase) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
