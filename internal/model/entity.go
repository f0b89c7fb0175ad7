package model

// Entity is a recognized real-world entity embedded in a Result.
type Entity struct {
	TdataID              string         `json:"tdata_id" yaml:"tdata_id"`
	TdataName            string         `json:"tdata_name" yaml:"tdata_name"`
	TdataType            string         `json:"tdata_type" yaml:"tdata_type"`
	TdataSlug            string         `json:"tdata_slug" yaml:"tdata_slug"`
	TdataCount           float64        `json:"tdata_count" yaml:"tdata_count"`
	MatchedNames         []string       `json:"matched_names" yaml:"matched_names"`
	ContributorBreakdown map[string]int `json:"contributor_breakdown" yaml:"contributor_breakdown"`
	RecipientBreakdown   map[string]int `json:"recipient_breakdown" yaml:"recipient_breakdown"`
	TopIndustries        []string       `json:"top_industries" yaml:"top_industries"`
	LobbyingClients      []string       `json:"lobbying_clients" yaml:"lobbying_clients"`
	LobbyingIssues       []string       `json:"lobbying_issues" yaml:"lobbying_issues"`
	Contributors         []Contributor  `json:"contributors" yaml:"contributors"`
}

// IsPolitician reports whether the entity is a political recipient.
func (e *Entity) IsPolitician() bool {
	return e.TdataType == PoliticianType
}

// IsCandidateContributor reports whether the entity can be looked up as a
// contributor to a politician: it must have an external id and must not be
// a politician itself.
func (e *Entity) IsCandidateContributor() bool {
	return e.TdataID != "" && !e.IsPolitician()
}

// Contributor links a money-giving entity to a recipient entity.
type Contributor struct {
	TdataName    string   `json:"tdata_name" yaml:"tdata_name"`
	MatchedNames []string `json:"matched_names" yaml:"matched_names"`
	Amount       int64    `json:"amount" yaml:"amount"`
	TdataID      string   `json:"tdata_id" yaml:"tdata_id"`
	TdataType    string   `json:"tdata_type" yaml:"tdata_type"`
	TdataSlug    string   `json:"tdata_slug" yaml:"tdata_slug"`
}
