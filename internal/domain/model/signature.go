package model

// Signature types.
const (
	SignatureTypeYARA     = "YARA"
	SignatureTypeRegex    = "Regex"
	SignatureTypeSuricata = "Suricata"
)

// Record states shared by signatures and users.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Signature is a detection rule used during analysis.
type Signature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  Timestamp `json:"createdDate"`
	ModifiedAt Timestamp `json:"lastModified"`
	Status     string    `json:"status"`
}

// SearchFields returns name, type and author.
func (s Signature) SearchFields() []string {
	return []string{s.Name, s.Type, s.CreatedBy}
}
