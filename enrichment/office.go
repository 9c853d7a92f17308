package enrichment

import "encoding/json"

// Office is the structured body returned by GET /office/{taxId}.
// Every nested object is optional in practice: the extractor tolerates
// whatever subset the API filled in.
type Office struct {
	Company             OfficeCompany  `json:"company"`
	Address             OfficeAddress  `json:"address"`
	MainActivity        OfficeActivity `json:"mainActivity"`
	Status              string         `json:"status"`
	StatusDate          string         `json:"statusDate"`
	HeadquarterOrBranch string         `json:"headquarterOrBranch"`
}

// OfficeCompany holds the registry data of the legal entity.
type OfficeCompany struct {
	Name        string     `json:"name"`
	Alias       string     `json:"alias"`
	OpeningDate string     `json:"openingDate"`
	LegalNature string     `json:"legalNature"`
	Size        OfficeSize `json:"size"`
}

// OfficeSize is the porte classification.
// IDs arrive as numbers from the API; json.Number keeps both numeric and
// string encodings readable.
type OfficeSize struct {
	ID      json.Number `json:"id"`
	Acronym string      `json:"acronym"`
	Text    string      `json:"text"`
}

// OfficeActivity is a CNAE activity code with its description.
type OfficeActivity struct {
	ID   json.Number `json:"id"`
	Text string      `json:"text"`
}

// OfficeAddress is the registered address of the establishment.
type OfficeAddress struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
}
