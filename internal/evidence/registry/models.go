package registry

// EvidenceType says what backs a verdict.
type EvidenceType string

const (
	EvidenceNone     EvidenceType = "none"
	EvidenceImage    EvidenceType = "image"
	EvidenceLiveData EvidenceType = "live_data"
)

// NotFoundSource is reported as the evidence source when no record resolved.
const NotFoundSource = "N/A"

// AuthoritativeRecord is reference data treated as ground truth for one identifier.
type AuthoritativeRecord struct {
	Source        string   `json:"source"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	LicenseStatus string   `json:"license_status"`
	Specialty     string   `json:"specialty,omitempty"`
	LastUpdated   string   `json:"last_updated,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
}

// AsMap renders the record as an evidence payload, omitting empty optional fields.
func (r AuthoritativeRecord) AsMap() map[string]any {
	m := map[string]any{
		"source":         r.Source,
		"name":           r.Name,
		"address":        r.Address,
		"license_status": r.LicenseStatus,
	}
	if r.Specialty != "" {
		m["specialty"] = r.Specialty
	}
	if r.LastUpdated != "" {
		m["last_updated"] = r.LastUpdated
	}
	if r.Lat != nil {
		m["lat"] = *r.Lat
	}
	if r.Lon != nil {
		m["lon"] = *r.Lon
	}
	return m
}

// Resolution is the outcome of resolving one identifier: the record, if any,
// and the evidence pointer that justifies it.
type Resolution struct {
	Identifier     string
	Record         *AuthoritativeRecord
	EvidenceType   EvidenceType
	EvidenceSource string
	EvidenceData   map[string]any
}

// Found reports whether an authoritative record was resolved.
func (r Resolution) Found() bool {
	return r.Record != nil
}

func notFound(identifier string) Resolution {
	return Resolution{
		Identifier:     identifier,
		EvidenceType:   EvidenceNone,
		EvidenceSource: NotFoundSource,
		EvidenceData:   map[string]any{},
	}
}
