package models

// GovernmentIDType labels a government-issued identifier
type GovernmentIDType string

const (
	// GovernmentIDPassport is a passport number
	GovernmentIDPassport GovernmentIDType = "passport"
	// GovernmentIDDriversLicense is a drivers license number
	GovernmentIDDriversLicense GovernmentIDType = "drivers_license"
	// GovernmentIDNationalID is a national identity card number
	GovernmentIDNationalID GovernmentIDType = "national_id"
	// GovernmentIDTaxID is a tax identification number
	GovernmentIDTaxID GovernmentIDType = "tax_id"
	// GovernmentIDSSN is a US social security number
	GovernmentIDSSN GovernmentIDType = "ssn"
	// GovernmentIDCedula is a Latin American cedula number
	GovernmentIDCedula GovernmentIDType = "cedula"
	// GovernmentIDCURP is a Mexican CURP code
	GovernmentIDCURP GovernmentIDType = "curp"
	// GovernmentIDElectoral is an electoral registry number
	GovernmentIDElectoral GovernmentIDType = "electoral"
	// GovernmentIDBusinessRegistration is a company registration number
	GovernmentIDBusinessRegistration GovernmentIDType = "business_registration"
	// GovernmentIDCommercialRegistry is a commercial registry number
	GovernmentIDCommercialRegistry GovernmentIDType = "commercial_registry"
	// GovernmentIDBirthCertificate is a birth certificate number
	GovernmentIDBirthCertificate GovernmentIDType = "birth_certificate"
	// GovernmentIDRefugeeID is a refugee travel document number
	GovernmentIDRefugeeID GovernmentIDType = "refugee_id"
	// GovernmentIDDiplomaticPassport is a diplomatic passport number
	GovernmentIDDiplomaticPassport GovernmentIDType = "diplomatic_passport"
)

// GovernmentID is a single government-issued identifier attached to an entity.
// Type is an open label: lists introduce identifier kinds faster than this
// model tracks them, and an unrecognized type still compares by value.
type GovernmentID struct {
	Type       GovernmentIDType `json:"type"`
	Country    string           `json:"country,omitempty"`
	Identifier string           `json:"identifier" validate:"required"`
}

// CryptoAddress is a cryptocurrency wallet attached to an entity
type CryptoAddress struct {
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address" validate:"required"`
}
