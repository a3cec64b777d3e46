package registry

import (
	"context"
	"fmt"
	"slices"
	"time"

	"guardian/pkg/platform/sentinel"
)

// LiveRegistry simulates the National Medical Commission / Indian Medical
// Registry lookup service. Its table is fixed at construction; Latency models
// the network round trip and can be zero.
type LiveRegistry struct {
	records map[string]AuthoritativeRecord
	Latency time.Duration
}

// NewLiveRegistry builds a simulated registry. A nil records map uses DefaultLiveRecords.
func NewLiveRegistry(records map[string]AuthoritativeRecord, latency time.Duration) *LiveRegistry {
	if records == nil {
		records = DefaultLiveRecords()
	}
	return &LiveRegistry{records: records, Latency: latency}
}

// Lookup returns the registry's record or sentinel.ErrNotFound.
func (c *LiveRegistry) Lookup(ctx context.Context, identifier string) (*AuthoritativeRecord, error) {
	if c.Latency > 0 {
		timer := time.NewTimer(c.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("live registry lookup: %w", ctx.Err())
		case <-timer.C:
		}
	}
	rec, ok := c.records[identifier]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Identifiers lists every identifier the registry knows, sorted.
func (c *LiveRegistry) Identifiers() []string {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

const (
	sourceNMCLive = "National Medical Commission (NMC) - Live"
	sourceIMR     = "Indian Medical Registry (IMR)"
)

func coord(v float64) *float64 {
	return &v
}

// DefaultLiveRecords returns a fresh copy of the simulated registry contents.
func DefaultLiveRecords() map[string]AuthoritativeRecord {
	return map[string]AuthoritativeRecord{
		"MCI-556677": {
			Source:        sourceNMCLive,
			Name:          "Dr. Rajesh Verma",
			Address:       "Lotus Hospital, Sector 62, Noida, Uttar Pradesh 201301",
			LicenseStatus: "Active (Permanent)",
			Specialty:     "Cardiology",
			LastUpdated:   "2025-11-10",
			Lat:           coord(28.6208),
			Lon:           coord(77.3639),
		},
		"MCI-998877": {
			Source:        sourceNMCLive,
			Name:          "Dr. Ananya Iyer",
			Address:       "Apollo Clinic, Koramangala, Bangalore, Karnataka 560034",
			LicenseStatus: "Active",
			Specialty:     "Pediatrics",
			LastUpdated:   "2025-10-05",
			Lat:           coord(12.9352),
			Lon:           coord(77.6245),
		},
		"MCI-112233": {
			Source:        sourceIMR,
			Name:          "Dr. Suresh Patel",
			Address:       "Civil Lines, Nagpur, Maharashtra 440001",
			LicenseStatus: "Suspended / Expired",
			Specialty:     "Orthopedics",
			LastUpdated:   "2024-01-15",
			Lat:           coord(21.1458),
			Lon:           coord(79.0882),
		},
		"MCI-223344": {
			Source:        sourceIMR,
			Name:          "Dr. Arjun Mehta",
			Address:       "SMS Hospital, JLN Marg, Jaipur, Rajasthan 302004",
			LicenseStatus: "Suspended (Non-Renewal)",
			Specialty:     "Dermatology",
			LastUpdated:   "2025-03-22",
			Lat:           coord(26.9046),
			Lon:           coord(75.8155),
		},
		"MCI-445566": {
			Source:        sourceNMCLive,
			Name:          "Dr. Meera Nair",
			Address:       "Amrita Hospital, Ponekkara, Kochi, Kerala 682041",
			LicenseStatus: "Active (Permanent)",
			Specialty:     "Neurology",
			LastUpdated:   "2025-09-18",
			Lat:           coord(10.0327),
			Lon:           coord(76.2939),
		},
		"MCI-667788": {
			Source:        sourceNMCLive,
			Name:          "Dr. Kavita Rao",
			Address:       "KIMS Hospital, Minister Road, Secunderabad, Telangana 500003",
			LicenseStatus: "Active (Provisional)",
			Specialty:     "General Surgery",
			LastUpdated:   "2025-08-01",
			Lat:           coord(17.4399),
			Lon:           coord(78.4983),
		},
	}
}
