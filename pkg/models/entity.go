package models

import (
	"time"
)

// EntityType classifies what kind of real-world subject a list entry describes
type EntityType string

const (
	// EntityTypePerson is an individual natural person
	EntityTypePerson EntityType = "person"
	// EntityTypeBusiness is a commercial company
	EntityTypeBusiness EntityType = "business"
	// EntityTypeOrganization is a non-commercial group (political party, agency, NGO)
	EntityTypeOrganization EntityType = "organization"
	// EntityTypeVessel is a ship identified by IMO number, call sign or MMSI
	EntityTypeVessel EntityType = "vessel"
	// EntityTypeAircraft is an airframe identified by serial number or ICAO code
	EntityTypeAircraft EntityType = "aircraft"
)

// SourceList identifies which sanctions authority published an entry
type SourceList string

const (
	// SourceUSOFAC is the US Treasury OFAC SDN and consolidated lists
	SourceUSOFAC SourceList = "us_ofac"
	// SourceEUCSL is the EU consolidated sanctions list
	SourceEUCSL SourceList = "eu_csl"
	// SourceUKCSL is the UK OFSI consolidated list
	SourceUKCSL SourceList = "uk_csl"
)

// Entity is a single screenable subject, either a sanctions list entry or an
// inbound query. The same shape is used on both sides of a comparison; list
// entries additionally carry Source and SourceID.
type Entity struct {
	Name       string     `json:"name" validate:"required"`
	EntityType EntityType `json:"entityType" validate:"omitempty,oneof=person business organization vessel aircraft"`
	Source     SourceList `json:"sourceList,omitempty" validate:"omitempty,oneof=us_ofac eu_csl uk_csl"`
	SourceID   string     `json:"sourceId,omitempty"`

	// AltNames holds aliases, AKAs and former names in their raw list form.
	AltNames []string `json:"altNames,omitempty"`

	// Exactly one of the kind structs is set for a well-formed entity,
	// matching EntityType. Queries may leave all of them nil.
	Person       *Person       `json:"person,omitempty"`
	Business     *Business     `json:"business,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Vessel       *Vessel       `json:"vessel,omitempty"`
	Aircraft     *Aircraft     `json:"aircraft,omitempty"`

	Contact         ContactInfo     `json:"contact"`
	Addresses       []Address       `json:"addresses,omitempty"`
	GovernmentIDs   []GovernmentID  `json:"governmentIds,omitempty" validate:"omitempty,dive"`
	CryptoAddresses []CryptoAddress `json:"cryptoAddresses,omitempty" validate:"omitempty,dive"`

	Affiliations   []Affiliation    `json:"affiliations,omitempty" validate:"omitempty,dive"`
	SanctionsInfo  *SanctionsInfo   `json:"sanctionsInfo,omitempty"`
	HistoricalInfo []HistoricalInfo `json:"historicalInfo,omitempty" validate:"omitempty,dive"`

	// Prepared caches the derived search fields. It is populated by
	// normalize.PrepareEntity and never edited in place afterwards.
	Prepared *PreparedFields `json:"preparedFields,omitempty"`
}

// Person carries the fields that only exist for individuals
type Person struct {
	Gender    string     `json:"gender,omitempty"`
	Titles    []string   `json:"titles,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	DeathDate *time.Time `json:"deathDate,omitempty"`
}

// Business carries the fields that only exist for companies
type Business struct {
	Created   *time.Time `json:"created,omitempty"`
	Dissolved *time.Time `json:"dissolved,omitempty"`
}

// Organization carries the fields that only exist for non-commercial groups
type Organization struct {
	Created   *time.Time `json:"created,omitempty"`
	Dissolved *time.Time `json:"dissolved,omitempty"`
}

// Vessel carries ship-specific identifiers and registry details
type Vessel struct {
	IMONumber string     `json:"imoNumber,omitempty"`
	Type      string     `json:"type,omitempty"`
	Flag      string     `json:"flag,omitempty"`
	Built     *time.Time `json:"built,omitempty"`
	Model     string     `json:"model,omitempty"`
	Tonnage   int        `json:"tonnage,omitempty"`
	MMSI      string     `json:"mmsi,omitempty"`
	CallSign  string     `json:"callSign,omitempty"`
	Owner     string     `json:"owner,omitempty"`
}

// Aircraft carries airframe-specific identifiers and registry details
type Aircraft struct {
	Type         string     `json:"type,omitempty"`
	Flag         string     `json:"flag,omitempty"`
	Built        *time.Time `json:"built,omitempty"`
	Model        string     `json:"model,omitempty"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	ICAOCode     string     `json:"icaoCode,omitempty"`
}

// BirthDate returns the person birth date or nil for non-person entities
func (e *Entity) BirthDate() *time.Time {
	if e.Person != nil {
		return e.Person.BirthDate
	}
	return nil
}

// DeathDate returns the person death date or nil for non-person entities
func (e *Entity) DeathDate() *time.Time {
	if e.Person != nil {
		return e.Person.DeathDate
	}
	return nil
}

// CreatedDate returns the formation date for businesses and organizations
func (e *Entity) CreatedDate() *time.Time {
	if e.Business != nil {
		return e.Business.Created
	}
	if e.Organization != nil {
		return e.Organization.Created
	}
	return nil
}

// DissolvedDate returns the dissolution date for businesses and organizations
func (e *Entity) DissolvedDate() *time.Time {
	if e.Business != nil {
		return e.Business.Dissolved
	}
	if e.Organization != nil {
		return e.Organization.Dissolved
	}
	return nil
}
