package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"guardian/internal/decision"
	decisionmetrics "guardian/internal/decision/metrics"
	"guardian/internal/evidence/registry"
	"guardian/internal/evidence/registry/mocks"
	"guardian/internal/ingest"
	"guardian/internal/validation"
	"guardian/internal/validation/metrics"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/platform/sentinel"
)

const header = "reg_no,first_name,last_name,address,license_status\n"

type ServiceSuite struct {
	suite.Suite
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	service *validation.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	local := registry.NewLocalTable(map[string]registry.AuthoritativeRecord{
		"MCI-101010": {
			Source:        "State Medical Council (Scanned)",
			Name:          "Dr. Priya Sharma",
			Address:       "Fortis Hospital, Vasant Kunj, New Delhi 110070",
			LicenseStatus: "Active",
		},
	})
	resolver := registry.NewResolver(local, registry.NewLiveRegistry(nil, 0),
		registry.WithEvidenceBaseURL("http://localhost:8080"))

	s.reg = prometheus.NewRegistry()
	s.metrics = metrics.New(s.reg)
	s.service = validation.NewService(resolver, decision.NewEngine(decision.DefaultPolicy(), nil),
		validation.WithMetrics(s.metrics),
		validation.WithDecisionMetrics(decisionmetrics.New(s.reg)),
	)
}

func (s *ServiceSuite) validate(csv string) []validation.ValidationResult {
	results, err := s.service.ValidateUpload(context.Background(), []byte(csv))
	s.Require().NoError(err)
	return results
}

func (s *ServiceSuite) TestResultsMirrorInputOrder() {
	results := s.validate(header +
		"MCI-000-UNKNOWN,Ghost,Doctor,Nowhere,Active\n" +
		"MCI-556677,Rajesh,Verma,\"Lotus Hospital, Sector 62, Noida, Uttar Pradesh 201301\",Active\n" +
		"MCI-000-UNKNOWN,Ghost,Doctor,Nowhere,Active\n")

	s.Require().Len(results, 3)
	s.Equal("MCI-000-UNKNOWN", results[0].Identifier)
	s.Equal("MCI-556677", results[1].Identifier)
	s.Equal(results[0], results[2], "repeated identifiers are processed independently with equal outcomes")
}

func (s *ServiceSuite) TestUnknownIdentifier() {
	results := s.validate(header + "MCI-000-UNKNOWN,Ghost,Doctor,Nowhere,Active\n")

	r := results[0]
	s.Equal(decision.StatusUnknown, r.Status)
	s.Equal(0, r.Confidence)
	s.Equal([]string{decision.IssueNotFound}, r.Issues)
	s.Equal(registry.EvidenceNone, r.EvidenceType)
	s.Equal(registry.NotFoundSource, r.EvidenceSource)
	s.Empty(r.EvidenceData)
	s.Equal("Ghost Doctor", r.Name)
}

func (s *ServiceSuite) TestLiveRecordVerified() {
	results := s.validate(header +
		"MCI-556677,Rajesh,Verma,\"noida lotus hospital sector 62 uttar pradesh 201301\",Active\n")

	r := results[0]
	s.Equal(decision.StatusVerified, r.Status)
	s.Equal(98, r.Confidence)
	s.Empty(r.Issues)
	s.Equal(registry.EvidenceLiveData, r.EvidenceType)
	s.Equal("National Medical Commission (NMC) - Live", r.EvidenceSource)
	s.Equal("Dr. Rajesh Verma", r.EvidenceData["name"])
}

func (s *ServiceSuite) TestLocalRecordCarriesImageEvidence() {
	results := s.validate(header +
		"MCI-101010,Priya,Sharma,\"Fortis Hospital, Vasant Kunj, New Delhi 110070\",Active\n")

	r := results[0]
	s.Equal(registry.EvidenceImage, r.EvidenceType)
	s.Equal("State Medical Council (Scanned)", r.EvidenceSource)
	s.Equal(map[string]any{"url": "http://localhost:8080/evidence/MCI-101010.png"}, r.EvidenceData)
}

func (s *ServiceSuite) TestSuspendedLicense() {
	results := s.validate(header +
		"MCI-223344,Arjun,Mehta,\"SMS Hospital, JLN Marg, Jaipur, Rajasthan 302004\",Active\n")

	r := results[0]
	s.Equal(decision.StatusFlagged, r.Status)
	s.Equal(0, r.Confidence)
	s.Require().Len(r.Issues, 1)
	s.Contains(r.Issues[0], "Suspended (Non-Renewal)")
}

func (s *ServiceSuite) TestNPIAliasAndFloatIdentifier() {
	results := s.validate("NPI;First Name;Last Name;Address\nMCI-556677.0;Rajesh;Verma;Pune\n")

	s.Require().Len(results, 1)
	s.Equal("MCI-556677", results[0].Identifier)
	s.Equal("Rajesh Verma", results[0].Name)
	s.Equal(registry.EvidenceLiveData, results[0].EvidenceType)
}

func (s *ServiceSuite) TestMissingNameColumns() {
	results := s.validate("reg_no\nMCI-000-UNKNOWN\n")
	s.Equal(" ", results[0].Name)
}

func (s *ServiceSuite) TestSchemaError() {
	_, err := s.service.ValidateUpload(context.Background(), []byte("name,address\nA,B\n"))

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSchema))
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal("CSV missing 'reg_no' column (also accepted: 'npi'); found columns: [name, address]", de.Message)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Uploads.WithLabelValues("client_error")))
}

func (s *ServiceSuite) TestMalformedCSV() {
	_, err := s.service.ValidateUpload(context.Background(), []byte("reg_no,address\n\"MCI-1,\"unterminated\n"))

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestMetricsCountRecords() {
	s.validate(header + "MCI-000-UNKNOWN,,,,\nMCI-556677,,,,\n")

	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Uploads.WithLabelValues("success")))
	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.Records))
}

func TestResolverFailureAbortsBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	live := mocks.NewMockLiveClient(ctrl)

	boom := errors.New("registry down")
	gomock.InOrder(
		live.EXPECT().Lookup(gomock.Any(), "MCI-1").Return(nil, sentinel.ErrNotFound),
		live.EXPECT().Lookup(gomock.Any(), "MCI-2").Return(nil, boom),
	)

	svc := validation.NewService(
		registry.NewResolver(registry.NewLocalTable(nil), live),
		decision.NewEngine(decision.DefaultPolicy(), nil),
	)
	results, err := svc.ValidateUpload(context.Background(), []byte("reg_no\nMCI-1\nMCI-2\nMCI-3\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	_, coded := dErrors.As(err)
	assert.False(t, coded, "unexpected failures stay uncoded so they surface as 500")
}

func TestResolverTimeoutIsCoded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	svc := validation.NewService(
		registry.NewResolver(registry.NewLocalTable(nil), registry.NewLiveRegistry(nil, time.Second)),
		decision.NewEngine(decision.DefaultPolicy(), nil),
	)
	_, err := svc.ValidateUpload(ctx, []byte("reg_no\nMCI-556677\n"))

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestSummarize(t *testing.T) {
	summary := validation.Summarize([]validation.ValidationResult{
		{Status: decision.StatusVerified},
		{Status: decision.StatusFlagged},
		{Status: decision.StatusFlagged},
		{Status: decision.StatusUnknown},
	})
	assert.Equal(t, validation.Summary{Total: 4, Verified: 1, Flagged: 2, Unknown: 1}, summary)
}

func TestAssembleFillsEmptyEvidence(t *testing.T) {
	r := validation.Assemble(
		ingest.NewInputRecord("MCI-9", map[string]string{}),
		registry.Resolution{Identifier: "MCI-9"},
		decision.Verdict{Status: decision.StatusUnknown},
	)
	assert.Equal(t, []string{}, r.Issues)
	assert.Equal(t, map[string]any{}, r.EvidenceData)
	assert.Equal(t, registry.NotFoundSource, r.EvidenceSource)
	assert.Equal(t, registry.EvidenceNone, r.EvidenceType)
}
