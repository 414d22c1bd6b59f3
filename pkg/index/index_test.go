package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/merging"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
)

func newTestIndex() *Index {
	return New(merging.NewMerger(normalize.NewTextNormalizer(normalize.DefaultConfig())))
}

func listed(source models.SourceList, sourceID, name string, entityType models.EntityType) *models.Entity {
	return &models.Entity{
		Name:       name,
		EntityType: entityType,
		Source:     source,
		SourceID:   sourceID,
	}
}

func TestIndex_AddAll(t *testing.T) {
	idx := newTestIndex()

	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
		listed(models.SourceEUCSL, "EU.1", "Maria Delgado", models.EntityTypePerson),
		nil,
	})

	assert.Equal(t, 2, idx.Size())
	assert.Len(t, idx.All(), 2)

	idx.AddAll(nil)
	assert.Equal(t, 2, idx.Size())
}

func TestIndex_Filters(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
		listed(models.SourceUSOFAC, "2", "Sunrise Shipping", models.EntityTypeBusiness),
		listed(models.SourceEUCSL, "EU.1", "Maria Delgado", models.EntityTypePerson),
	})

	t.Run("by source", func(t *testing.T) {
		assert.Len(t, idx.GetBySource(models.SourceUSOFAC), 2)
		assert.Len(t, idx.GetBySource(models.SourceEUCSL), 1)
		assert.Empty(t, idx.GetBySource(models.SourceUKCSL))
	})

	t.Run("by type", func(t *testing.T) {
		assert.Len(t, idx.GetByType(models.EntityTypePerson), 2)
		assert.Len(t, idx.GetByType(models.EntityTypeBusiness), 1)
		assert.Empty(t, idx.GetByType(models.EntityTypeVessel))
	})
}

func TestIndex_FindBySourceID(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "9760", "Juan Cruz", models.EntityTypePerson),
	})

	t.Run("found", func(t *testing.T) {
		e, ok := idx.FindBySourceID(models.SourceUSOFAC, "9760")
		require.True(t, ok)
		assert.Equal(t, "Juan Cruz", e.Name)
	})

	t.Run("source id lookup is case insensitive", func(t *testing.T) {
		idx.AddAll([]*models.Entity{
			listed(models.SourceEUCSL, "EU.4410", "Maria Delgado", models.EntityTypePerson),
		})
		_, ok := idx.FindBySourceID(models.SourceEUCSL, "eu.4410")
		assert.True(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := idx.FindBySourceID(models.SourceUSOFAC, "0000")
		assert.False(t, ok)
		_, ok = idx.FindBySourceID(models.SourceUSOFAC, "")
		assert.False(t, ok)
	})
}

func TestIndex_ReplaceAll(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
	})

	idx.ReplaceAll([]*models.Entity{
		listed(models.SourceUKCSL, "UK.1", "Sunrise Shipping", models.EntityTypeBusiness),
		listed(models.SourceUKCSL, "UK.2", "Hermes", models.EntityTypeVessel),
	})

	assert.Equal(t, 2, idx.Size())
	_, ok := idx.FindBySourceID(models.SourceUSOFAC, "1")
	assert.False(t, ok)
	_, ok = idx.FindBySourceID(models.SourceUKCSL, "UK.2")
	assert.True(t, ok)
}

func TestIndex_ReplaceAllWithMerge(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
	})

	ofac := listed(models.SourceUSOFAC, "9760", "CRUZ, Juan Pablo", models.EntityTypePerson)
	ofac.Person = &models.Person{}
	eu := listed(models.SourceEUCSL, "EU.1", "Juan Pablo Cruz", models.EntityTypePerson)
	eu.Person = &models.Person{}

	idx.ReplaceAllWithMerge([]*models.Entity{ofac, eu})

	// The old contents are gone and the rebuilt set is merged across lists.
	assert.Equal(t, 1, idx.Size())
	_, ok := idx.FindBySourceID(models.SourceUSOFAC, "1")
	assert.False(t, ok)

	merged := idx.All()[0]
	assert.Contains(t, merged.AltNames, "Juan Pablo Cruz")
}

func TestIndex_Upsert(t *testing.T) {
	idx := newTestIndex()

	t.Run("new record appends", func(t *testing.T) {
		replaced := idx.Upsert(listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson))
		assert.False(t, replaced)
		assert.Equal(t, 1, idx.Size())
	})

	t.Run("same identity replaces in place", func(t *testing.T) {
		updated := listed(models.SourceUSOFAC, "1", "CRUZ, Juan Pablo", models.EntityTypePerson)
		replaced := idx.Upsert(updated)
		assert.True(t, replaced)
		assert.Equal(t, 1, idx.Size())

		e, ok := idx.FindBySourceID(models.SourceUSOFAC, "1")
		require.True(t, ok)
		assert.Equal(t, "CRUZ, Juan Pablo", e.Name)
	})

	t.Run("same id on another list is a distinct record", func(t *testing.T) {
		replaced := idx.Upsert(listed(models.SourceEUCSL, "1", "Juan Cruz", models.EntityTypePerson))
		assert.False(t, replaced)
		assert.Equal(t, 2, idx.Size())
	})
}

func TestIndex_Remove(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
		listed(models.SourceUSOFAC, "2", "Maria Delgado", models.EntityTypePerson),
	})

	assert.True(t, idx.Remove(models.SourceUSOFAC, "1"))
	assert.Equal(t, 1, idx.Size())
	_, ok := idx.FindBySourceID(models.SourceUSOFAC, "1")
	assert.False(t, ok)

	assert.False(t, idx.Remove(models.SourceUSOFAC, "1"))
	assert.False(t, idx.Remove(models.SourceUSOFAC, ""))
}

func TestIndex_AddAllWithMerge(t *testing.T) {
	idx := newTestIndex()

	idx.AddAllWithMerge([]*models.Entity{
		func() *models.Entity {
			e := listed(models.SourceUSOFAC, "9760", "CRUZ, Juan Pablo", models.EntityTypePerson)
			e.Person = &models.Person{}
			return e
		}(),
	})
	require.Equal(t, 1, idx.Size())

	// Loading the EU list afterwards folds its copy into the OFAC record.
	idx.AddAllWithMerge([]*models.Entity{
		func() *models.Entity {
			e := listed(models.SourceEUCSL, "EU.1", "Juan Pablo Cruz", models.EntityTypePerson)
			e.Person = &models.Person{}
			return e
		}(),
		func() *models.Entity {
			e := listed(models.SourceEUCSL, "EU.2", "Maria Delgado", models.EntityTypePerson)
			e.Person = &models.Person{}
			return e
		}(),
	})

	assert.Equal(t, 2, idx.Size())

	merged := idx.GetBySource(models.SourceUSOFAC)
	require.Len(t, merged, 1)
	assert.Contains(t, merged[0].AltNames, "Juan Pablo Cruz")
}

func TestIndex_Clear(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
	})

	idx.Clear()
	assert.Equal(t, 0, idx.Size())
	assert.Empty(t, idx.All())
}

func TestIndex_AllReturnsACopy(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]*models.Entity{
		listed(models.SourceUSOFAC, "1", "Juan Cruz", models.EntityTypePerson),
		listed(models.SourceUSOFAC, "2", "Maria Delgado", models.EntityTypePerson),
	})

	all := idx.All()
	all[0] = nil

	require.Len(t, idx.All(), 2)
	assert.NotNil(t, idx.All()[0])
}
