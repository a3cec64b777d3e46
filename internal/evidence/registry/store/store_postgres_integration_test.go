//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"guardian/internal/evidence/registry/store"
	"guardian/pkg/testutil/containers"
)

type PostgresLocalTableSuite struct {
	suite.Suite
	pg *containers.PostgresContainer
}

func TestPostgresLocalTableSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLocalTableSuite))
}

func (s *PostgresLocalTableSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.Pool.Exec(context.Background(), store.Schema)
	s.Require().NoError(err)
}

func (s *PostgresLocalTableSuite) SetupTest() {
	_, err := s.pg.Pool.Exec(context.Background(), "TRUNCATE registry_truth")
	s.Require().NoError(err)
}

func (s *PostgresLocalTableSuite) TestLoadsRowsWithNullableColumns() {
	ctx := context.Background()
	_, err := s.pg.Pool.Exec(ctx, `
		INSERT INTO registry_truth (identifier, source, name, address, license_status, specialty, last_updated, lat, lon)
		VALUES
			('MCI-101010', 'State Medical Council Scan', 'Dr. Priya Sharma', 'AIIMS, Ansari Nagar, New Delhi 110029', 'Active', 'Oncology', '2025-06-01', 28.5672, 77.2100),
			('MCI-202020', 'State Medical Council Scan', '', 'Ruby Hall Clinic, Pune 411001', 'Expired', NULL, NULL, NULL, NULL)`)
	s.Require().NoError(err)

	table, err := store.LoadLocalTable(ctx, s.pg.Pool)
	s.Require().NoError(err)
	s.Equal(2, table.Len())

	full, ok := table.Get("MCI-101010")
	s.Require().True(ok)
	s.Equal("Oncology", full.Specialty)
	s.Require().NotNil(full.Lat)
	s.InDelta(28.5672, *full.Lat, 1e-9)

	sparse, ok := table.Get("MCI-202020")
	s.Require().True(ok)
	s.Equal("Expired", sparse.LicenseStatus)
	s.Empty(sparse.Specialty)
	s.Nil(sparse.Lat)
}

func (s *PostgresLocalTableSuite) TestEmptyTable() {
	table, err := store.LoadLocalTable(context.Background(), s.pg.Pool)
	s.Require().NoError(err)
	s.Equal(0, table.Len())
}
