package models

// ContactInfo groups the reachable-channel fields of an entity
type ContactInfo struct {
	EmailAddresses []string `json:"emailAddresses,omitempty"`
	PhoneNumbers   []string `json:"phoneNumbers,omitempty"`
	FaxNumbers     []string `json:"faxNumbers,omitempty"`
	Websites       []string `json:"websites,omitempty"`
}

// IsEmpty reports whether no contact channel is populated
func (c ContactInfo) IsEmpty() bool {
	return len(c.EmailAddresses) == 0 && len(c.PhoneNumbers) == 0 &&
		len(c.FaxNumbers) == 0 && len(c.Websites) == 0
}

// Address is a postal address attached to an entity
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// IsEmpty reports whether every address field is blank
func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.Line2 == "" && a.City == "" &&
		a.State == "" && a.PostalCode == "" && a.Country == ""
}
