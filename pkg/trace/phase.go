package trace

// Phase names a stage of the scoring pipeline. Every candidate passes through
// all of them; only some write trace events. Tokenization and phonetic
// filtering run inside the name comparisons, and filtering happens after all
// scoring, so those carry events only when a caller records them explicitly.
type Phase string

const (
	// PhaseNormalization covers text cleanup and prepared-field population
	PhaseNormalization Phase = "NORMALIZATION"
	// PhaseTokenization covers word splitting and combination generation
	PhaseTokenization Phase = "TOKENIZATION"
	// PhasePhoneticFilter covers the sound-class pre-check
	PhasePhoneticFilter Phase = "PHONETIC_FILTER"
	// PhaseNameComparison covers primary name scoring
	PhaseNameComparison Phase = "NAME_COMPARISON"
	// PhaseAltNameComparison covers alternate name scoring
	PhaseAltNameComparison Phase = "ALT_NAME_COMPARISON"
	// PhaseGovIDComparison covers government identifier matching
	PhaseGovIDComparison Phase = "GOV_ID_COMPARISON"
	// PhaseCryptoComparison covers cryptocurrency wallet matching
	PhaseCryptoComparison Phase = "CRYPTO_COMPARISON"
	// PhaseContactComparison covers email, phone, fax and website matching
	PhaseContactComparison Phase = "CONTACT_COMPARISON"
	// PhaseAddressComparison covers postal address matching
	PhaseAddressComparison Phase = "ADDRESS_COMPARISON"
	// PhaseDateComparison covers birth, death and registry date matching
	PhaseDateComparison Phase = "DATE_COMPARISON"
	// PhaseAggregation covers the weighted combination into a final score
	PhaseAggregation Phase = "AGGREGATION"
	// PhaseFiltering covers the minimum-match threshold applied after scoring
	PhaseFiltering Phase = "FILTERING"
)
