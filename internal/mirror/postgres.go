package mirror

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/example/transport-tracking/internal/models"
)

// BreadcrumbStore persists every mirrored position as a row, giving
// administrators a queryable trail per chauffeur.
type BreadcrumbStore struct {
	db *sql.DB
}

func NewBreadcrumbStore(dsn string) (*BreadcrumbStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &BreadcrumbStore{db: db}, nil
}

func (b *BreadcrumbStore) Close() error { return b.db.Close() }

func (b *BreadcrumbStore) Record(ctx context.Context, chauffeurID string, s models.PositionSample) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO breadcrumbs(chauffeur_id, latitude, longitude, speed_mps, heading, accuracy_m, captured_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		chauffeurID, s.Latitude, s.Longitude, s.SpeedMps, s.Heading, s.AccuracyM, s.CapturedAt)
	return err
}
