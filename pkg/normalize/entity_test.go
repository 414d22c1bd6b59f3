package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/models"
)

func TestReorderListedName(t *testing.T) {
	t.Run("last comma first becomes natural order", func(t *testing.T) {
		assert.Equal(t, "John SMITH", ReorderListedName("SMITH, John"))
		assert.Equal(t, "Shibl Muhsin Ubayd AL-ZAYDI", ReorderListedName("AL-ZAYDI, Shibl Muhsin Ubayd"))
	})

	t.Run("no comma passes through", func(t *testing.T) {
		assert.Equal(t, "John Smith", ReorderListedName("John Smith"))
	})

	t.Run("degenerate commas pass through", func(t *testing.T) {
		assert.Equal(t, "SMITH,", ReorderListedName("SMITH,"))
		assert.Equal(t, ", John", ReorderListedName(", John"))
	})
}

func TestTrimCompanySuffixes(t *testing.T) {
	t.Run("single suffix", func(t *testing.T) {
		assert.Equal(t, "acme widgets", TrimCompanySuffixes("acme widgets inc"))
		assert.Equal(t, "banco nacional", TrimCompanySuffixes("banco nacional sa"))
	})

	t.Run("stacked suffixes", func(t *testing.T) {
		assert.Equal(t, "acme holding", TrimCompanySuffixes("acme holding co ltd"))
	})

	t.Run("suffix token mid name stays", func(t *testing.T) {
		assert.Equal(t, "jsc argument", TrimCompanySuffixes("jsc argument"))
		assert.Equal(t, "co op farms", TrimCompanySuffixes("co op farms"))
	})

	t.Run("never trims to nothing", func(t *testing.T) {
		assert.Equal(t, "inc", TrimCompanySuffixes("inc"))
		assert.Equal(t, "ltd", TrimCompanySuffixes("ltd"))
	})
}

func TestPrepareEntity(t *testing.T) {
	n := NewTextNormalizer(DefaultConfig())

	t.Run("populates prepared fields", func(t *testing.T) {
		e := &models.Entity{
			Name:       "SMITH, John",
			EntityType: models.EntityTypePerson,
			Source:     models.SourceUSOFAC,
			SourceID:   "12345",
			AltNames:   []string{"Johnny SMITH"},
		}

		n.PrepareEntity(e)

		require.True(t, e.IsPrepared())
		assert.Equal(t, "john smith", e.Prepared.Name)
		assert.Equal(t, []string{"john", "smith"}, e.Prepared.NameTokens)
		require.Len(t, e.Prepared.AltNames, 1)
		assert.Equal(t, "johnny smith", e.Prepared.AltNames[0])
		assert.Equal(t, [][]string{{"johnny", "smith"}}, e.Prepared.AltNameTokens)
		require.NotEmpty(t, e.Prepared.NameCombinations)
		assert.Equal(t, []string{"john", "smith"}, e.Prepared.NameCombinations[0])
		assert.NotEmpty(t, e.Prepared.Fingerprint)
		assert.NotEmpty(t, e.Prepared.Language)
	})

	t.Run("strips apostrophes from names", func(t *testing.T) {
		e := &models.Entity{Name: "O'Brien, Patrick", EntityType: models.EntityTypePerson}
		n.PrepareEntity(e)
		assert.Equal(t, "patrick obrien", e.Prepared.Name)
	})

	t.Run("trims company suffixes for businesses", func(t *testing.T) {
		e := &models.Entity{Name: "ACME Widgets Inc.", EntityType: models.EntityTypeBusiness}
		n.PrepareEntity(e)
		assert.Equal(t, "acme widgets", e.Prepared.Name)
	})

	t.Run("keeps organization names intact apart from suffixes", func(t *testing.T) {
		e := &models.Entity{Name: "Ministry of Defense", EntityType: models.EntityTypeOrganization}
		n.PrepareEntity(e)
		// "of" is removed as a stopword, the rest survives
		assert.Equal(t, "ministry defense", e.Prepared.Name)
	})

	t.Run("idempotent", func(t *testing.T) {
		e := &models.Entity{
			Name:       "SMITH, John",
			EntityType: models.EntityTypePerson,
			Contact:    models.ContactInfo{PhoneNumbers: []string{"+1 (555) 123-4567"}},
		}

		n.PrepareEntity(e)
		first := *e.Prepared
		n.PrepareEntity(e)

		assert.Equal(t, first, *e.Prepared)
		assert.Equal(t, []string{"15551234567"}, e.Contact.PhoneNumbers)
	})

	t.Run("normalizes contact channels", func(t *testing.T) {
		e := &models.Entity{
			Name:       "ACME Widgets",
			EntityType: models.EntityTypeBusiness,
			Contact: models.ContactInfo{
				PhoneNumbers:   []string{"+1 (555) 111-2222"},
				EmailAddresses: []string{" Sales@ACME.example "},
				Websites:       []string{"https://ACME.example/"},
			},
		}

		n.PrepareEntity(e)

		assert.Equal(t, []string{"15551112222"}, e.Contact.PhoneNumbers)
		assert.Equal(t, []string{"sales@acme.example"}, e.Contact.EmailAddresses)
		assert.Equal(t, []string{"acme.example"}, e.Contact.Websites)
	})

	t.Run("nil entity is a no-op", func(t *testing.T) {
		assert.Nil(t, n.PrepareEntity(nil))
	})
}

func TestFingerprint(t *testing.T) {
	base := func() *models.Entity {
		return &models.Entity{
			Name:       "ACME Widgets",
			EntityType: models.EntityTypeBusiness,
			Source:     models.SourceUSOFAC,
			SourceID:   "9876",
			AltNames:   []string{"ACME", "Widgets International"},
			GovernmentIDs: []models.GovernmentID{
				{Type: models.GovernmentIDTaxID, Country: "US", Identifier: "52-2083095"},
			},
		}
	}

	t.Run("stable across list reordering", func(t *testing.T) {
		a := base()
		b := base()
		b.AltNames = []string{"Widgets International", "ACME"}
		assert.Equal(t, Fingerprint(a), Fingerprint(b))
	})

	t.Run("changes when identity fields change", func(t *testing.T) {
		a := base()
		b := base()
		b.Name = "ACME Widgets International"
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

		c := base()
		c.GovernmentIDs[0].Identifier = "52-2083096"
		assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	})

	t.Run("identifier formatting does not churn the hash", func(t *testing.T) {
		a := base()
		b := base()
		b.GovernmentIDs[0].Identifier = "522083095"
		assert.Equal(t, Fingerprint(a), Fingerprint(b))
	})
}
