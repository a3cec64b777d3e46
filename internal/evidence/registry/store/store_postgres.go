package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardian/internal/evidence/registry"
)

// Schema creates the table the local authoritative snapshot is read from.
const Schema = `
CREATE TABLE IF NOT EXISTS registry_truth (
	identifier     TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	license_status TEXT NOT NULL DEFAULT '',
	specialty      TEXT,
	last_updated   TEXT,
	lat            DOUBLE PRECISION,
	lon            DOUBLE PRECISION
)`

const selectRegistryTruth = `
SELECT identifier, source, name, address, license_status, specialty, last_updated, lat, lon
FROM registry_truth`

// LoadLocalTable reads the whole registry_truth table once into a read-only
// registry.LocalTable.
func LoadLocalTable(ctx context.Context, pool *pgxpool.Pool) (*registry.LocalTable, error) {
	rows, err := pool.Query(ctx, selectRegistryTruth)
	if err != nil {
		return nil, fmt.Errorf("query registry_truth: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scan registry_truth: %w", err)
	}

	table := make(map[string]registry.AuthoritativeRecord, len(records))
	for _, r := range records {
		table[r.identifier] = r.record
	}
	return registry.NewLocalTable(table), nil
}

type truthRow struct {
	identifier string
	record     registry.AuthoritativeRecord
}

func scanRecord(row pgx.CollectableRow) (truthRow, error) {
	var (
		out                    truthRow
		specialty, lastUpdated *string
	)
	err := row.Scan(
		&out.identifier,
		&out.record.Source,
		&out.record.Name,
		&out.record.Address,
		&out.record.LicenseStatus,
		&specialty,
		&lastUpdated,
		&out.record.Lat,
		&out.record.Lon,
	)
	if err != nil {
		return truthRow{}, err
	}
	if specialty != nil {
		out.record.Specialty = *specialty
	}
	if lastUpdated != nil {
		out.record.LastUpdated = *lastUpdated
	}
	return out, nil
}
