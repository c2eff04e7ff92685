package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity() Activity {
	return Activity{
		ID:          "analyze-garment",
		DisplayName: "Analyze Garment",
		Category:    "analysis",
		TaskType:    "analyze-garment",
		Timeout:     "60s",
	}
}

func TestLoadOrNew_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")

	reg, err := LoadOrNew(path)
	require.NoError(t, err)
	assert.Empty(t, reg.Activities)

	assert.False(t, reg.Upsert(sampleActivity()))
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, "analyze-garment", loaded.Activities[0].TaskType)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestUpsert_Replaces(t *testing.T) {
	reg := &ActivityRegistry{}
	reg.Upsert(sampleActivity())

	updated := sampleActivity()
	updated.Version = "1.1.0"
	assert.True(t, reg.Upsert(updated))
	require.Len(t, reg.Activities, 1)
	assert.Equal(t, "1.1.0", reg.Activities[0].Version)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&ActivityRegistry{}).Validate())

	ok := &ActivityRegistry{Activities: []Activity{sampleActivity()}}
	assert.NoError(t, ok.Validate())

	dup := &ActivityRegistry{Activities: []Activity{sampleActivity(), sampleActivity()}}
	assert.ErrorContains(t, dup.Validate(), "duplicate")

	bad := sampleActivity()
	bad.Timeout = "soon"
	assert.ErrorContains(t, (&ActivityRegistry{Activities: []Activity{bad}}).Validate(), "timeout")
}
