package models

import (
	"time"
)

// SanctionsInfo carries the program metadata published alongside a list entry
type SanctionsInfo struct {
	// Programs are the sanctions program codes the entry appears under,
	// for example SDGT or UKRAINE-EO13662.
	Programs []string `json:"programs,omitempty"`
	// Secondary marks entries subject to secondary sanctions risk.
	Secondary bool `json:"secondary"`
	// Description is the free-text remarks field from the source list.
	Description string `json:"description,omitempty"`
}

// HistoricalInfoType labels a piece of historical information
type HistoricalInfoType string

const (
	// HistoricalFormerName is a name the entity was previously listed under
	HistoricalFormerName HistoricalInfoType = "former_name"
	// HistoricalFormerAddress is an address the entity previously used
	HistoricalFormerAddress HistoricalInfoType = "former_address"
	// HistoricalFormerFlag is a flag state a vessel previously sailed under
	HistoricalFormerFlag HistoricalInfoType = "former_flag"
)

// HistoricalInfo is a dated piece of superseded information about an entity
type HistoricalInfo struct {
	Type  HistoricalInfoType `json:"type"`
	Value string             `json:"value" validate:"required"`
	Date  *time.Time         `json:"date,omitempty"`
}

// AffiliationType labels the relationship between an entity and an affiliate
type AffiliationType string

const (
	// AffiliationOwnedBy marks majority ownership by the affiliate
	AffiliationOwnedBy AffiliationType = "owned_by"
	// AffiliationOwns marks majority ownership of the affiliate
	AffiliationOwns AffiliationType = "owns"
	// AffiliationControlledBy marks operational control by the affiliate
	AffiliationControlledBy AffiliationType = "controlled_by"
	// AffiliationControls marks operational control of the affiliate
	AffiliationControls AffiliationType = "controls"
	// AffiliationLinkedTo marks a published but unspecified link
	AffiliationLinkedTo AffiliationType = "linked_to"
	// AffiliationAssociateOf marks a personal or business association
	AffiliationAssociateOf AffiliationType = "associate_of"
	// AffiliationFamilyMemberOf marks a family relationship
	AffiliationFamilyMemberOf AffiliationType = "family_member_of"
	// AffiliationLeaderOf marks a leadership position in the affiliate
	AffiliationLeaderOf AffiliationType = "leader_of"
	// AffiliationOfficialOf marks an official role in the affiliate
	AffiliationOfficialOf AffiliationType = "official_of"
)

// Affiliation is a published relationship from a list entry to another party.
// Type is an open label; affiliation scoring treats unrecognized types as
// unrelated rather than rejecting the record.
type Affiliation struct {
	EntityName string          `json:"entityName" validate:"required"`
	Type       AffiliationType `json:"type"`
}
