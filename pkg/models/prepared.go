package models

// PreparedFields caches the derived values scoring needs so they are computed
// once per entity instead of once per comparison. A nil Prepared pointer on an
// Entity means the entity has not been normalized yet.
type PreparedFields struct {
	// Name is the normalized primary name.
	Name string `json:"name"`
	// AltNames are the normalized alternate names, same order as the raw list.
	AltNames []string `json:"altNames,omitempty"`
	// NameTokens is Name split on whitespace.
	NameTokens []string `json:"nameTokens,omitempty"`
	// AltNameTokens holds the token split of each entry in AltNames.
	AltNameTokens [][]string `json:"altNameTokens,omitempty"`
	// NameCombinations are the pre-generated token groupings of NameTokens,
	// first entry always the original split.
	NameCombinations [][]string `json:"nameCombinations,omitempty"`
	// Language is the ISO 639-1 code stopword removal ran with.
	Language string `json:"language,omitempty"`
	// Fingerprint is a stable hash of the normalized identity fields, used to
	// skip reindexing entries that have not materially changed.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// IsPrepared reports whether derived search fields have been populated
func (e *Entity) IsPrepared() bool {
	return e.Prepared != nil
}
