package formstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

func TestContainer_UpdateAndReset(t *testing.T) {
	c := New()

	got := c.Update(domain.DraftPatch{Title: domain.Some("Smart Bridge Monitor")})
	assert.Equal(t, "Smart Bridge Monitor", got.Title)

	got = c.Update(domain.DraftPatch{RequiredSkills: domain.Some([]string{"Go"})})
	assert.Equal(t, "Smart Bridge Monitor", got.Title)
	assert.Equal(t, []string{"Go"}, got.RequiredSkills)

	c.Reset()
	assert.Equal(t, domain.NewProjectDraft(), c.Snapshot())
}

func TestContainer_SnapshotIsIsolated(t *testing.T) {
	c := New()
	c.Update(domain.DraftPatch{Tags: domain.Some([]string{"iot"})})

	snap := c.Snapshot()
	snap.Tags[0] = "changed"

	assert.Equal(t, []string{"iot"}, c.Snapshot().Tags)
}

func TestContainer_Restore(t *testing.T) {
	c := New()
	d := domain.NewProjectDraft()
	d.Title = "Restored"
	c.Restore(d)
	assert.Equal(t, "Restored", c.Snapshot().Title)
}
