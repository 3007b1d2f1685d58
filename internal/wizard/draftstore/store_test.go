package draftstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

var testKey = Key{Owner: "user-1", Wizard: domain.WizardKey}

func sampleDraft() domain.ProjectDraft {
	d := domain.NewProjectDraft()
	d.Title = "Smart Bridge Monitor"
	d.Description = "IoT strain sensors"
	d.ProblemStatement = "Bridges fail silently"
	d.EstimatedBudget = decimal.RequireFromString("1250.50")
	d.Tags = []string{"iot", "civil"}
	d.AIClassification = &domain.AIClassification{
		Category:    "Engineering",
		Subcategory: "Civil",
		Complexity:  domain.ComplexityIntermediate,
		Skills:      []string{"IoT"},
		Resources:   []string{},
		Reasoning:   "sensors",
	}
	return d
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemorySlot())

	saved := &domain.DraftRecord{FormData: sampleDraft(), Timestamp: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, testKey, saved))
	assert.Equal(t, domain.CurrentSchemaVersion, saved.Version)

	var got domain.DraftRecord
	ok, err := store.Load(ctx, testKey, &got)
	require.NoError(t, err)
	require.True(t, ok)

	if diff := cmp.Diff(saved.FormData, got.FormData, decimalEqual); diff != "" {
		t.Fatalf("form data mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, saved.Timestamp.Equal(got.Timestamp))
	assert.True(t, got.HasAnalysis())
}

func TestStore_LoadEmpty(t *testing.T) {
	store := New(NewMemorySlot())

	var got domain.DraftRecord
	ok, err := store.Load(context.Background(), testKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := New(slot)

	require.NoError(t, store.Save(ctx, testKey, &domain.DraftRecord{FormData: sampleDraft()}))
	require.NoError(t, store.Clear(ctx, testKey))
	require.NoError(t, store.Clear(ctx, testKey))
	assert.Equal(t, 0, slot.Len())
}

func TestStore_CorruptRecordIsCleared(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := New(slot)

	for name, payload := range map[string]string{
		"not json":   `{"formData": `,
		"wrong type": `{"schemaVersion": 1, "formData": 42}`,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, slot.Set(ctx, testKey, []byte(payload)))

			var got domain.DraftRecord
			ok, err := store.Load(ctx, testKey, &got)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, 0, slot.Len())
		})
	}
}

func TestStore_LegacyRecordIsMigrated(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := New(slot)

	legacy := `{"formData": {"title": "Old draft", "tags": ["a"]}, "timestamp": "2024-03-01T10:00:00Z"}`
	require.NoError(t, slot.Set(ctx, testKey, []byte(legacy)))

	var got domain.DraftRecord
	ok, err := store.Load(ctx, testKey, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.CurrentSchemaVersion, got.Version)
	assert.Equal(t, "Old draft", got.FormData.Title)
	assert.Equal(t, []string{"a"}, got.FormData.Tags)
}

func TestStore_FutureVersionIsCleared(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := New(slot)

	require.NoError(t, slot.Set(ctx, testKey, []byte(`{"schemaVersion": 99, "formData": {"title": "x"}}`)))

	var got domain.DraftRecord
	ok, err := store.Load(ctx, testKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, slot.Len())
}

func TestStore_SlotsAreIsolatedPerKey(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemorySlot())

	other := Key{Owner: "user-2", Wizard: domain.WizardKey}
	require.NoError(t, store.Save(ctx, testKey, &domain.DraftRecord{FormData: sampleDraft()}))

	var got domain.DraftRecord
	ok, err := store.Load(ctx, other, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
