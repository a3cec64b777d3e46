package ingest

import "strings"

// Column names recognised by the engine, after header normalization.
const (
	ColumnRegNo         = "reg_no"
	ColumnNPI           = "npi"
	ColumnFirstName     = "first_name"
	ColumnLastName      = "last_name"
	ColumnAddress       = "address"
	ColumnLicenseStatus = "license_status"
)

// IdentifierAliases lists accepted identifier column names in lookup order.
var IdentifierAliases = []string{ColumnRegNo, ColumnNPI}

// InputRecord is one uploaded row keyed by normalized column name. Absent
// columns and cells read as the empty string.
type InputRecord struct {
	identifier string
	fields     map[string]string
}

// NewInputRecord builds a record directly; used by callers that already hold
// parsed fields.
func NewInputRecord(identifier string, fields map[string]string) InputRecord {
	return InputRecord{identifier: NormalizeIdentifier(identifier), fields: fields}
}

// Identifier returns the normalized registration identifier.
func (r InputRecord) Identifier() string {
	return r.identifier
}

// Get returns the raw cell for column, or "".
func (r InputRecord) Get(column string) string {
	return r.fields[column]
}

func (r InputRecord) Address() string {
	return r.Get(ColumnAddress)
}

func (r InputRecord) LicenseStatus() string {
	return r.Get(ColumnLicenseStatus)
}

// FullName joins first and last name with a single space.
func (r InputRecord) FullName() string {
	return r.Get(ColumnFirstName) + " " + r.Get(ColumnLastName)
}

// NormalizeIdentifier trims whitespace and strips the ".0" suffix left behind
// when a spreadsheet stored a numeric identifier as a float.
func NormalizeIdentifier(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, ".0")
	return strings.TrimSpace(v)
}
