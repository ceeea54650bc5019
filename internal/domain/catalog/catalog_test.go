package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
)

func TestBuiltin(t *testing.T) {
	cat := Builtin()
	require.Len(t, cat.Apps, 10)
	assert.Equal(t, system.AppID("phone"), cat.Apps[0].ID)
	assert.Equal(t, system.AppID("playstore"), cat.Apps[9].ID)

	for i, app := range cat.Apps {
		assert.Equal(t, app.ID, cat.HomeGrid[i])
		assert.NotEmpty(t, app.Icon)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"yaml", `
apps:
  - id: notes
    name: Notes
    icon: "📝"
  - id: maps
    name: Maps
homeGrid: [maps, notes]
`},
		{".toml", `
homeGrid = ["maps", "notes"]

[[apps]]
id = "notes"
name = "Notes"
icon = "📝"

[[apps]]
id = "maps"
name = "Maps"
`},
		{"json", `{"apps":[{"id":"notes","name":"Notes","icon":"📝"},{"id":"maps","name":"Maps"}],"homeGrid":["maps","notes"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cat, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, []system.AppSpec{
				{ID: "notes", Name: "Notes", Icon: "📝"},
				{ID: "maps", Name: "Maps"},
			}, cat.Apps)
			assert.Equal(t, []system.AppID{"maps", "notes"}, cat.HomeGrid)
		})
	}
}

func TestParseDefaultsGridToInstallOrder(t *testing.T) {
	cat, err := Parse([]byte(`{"apps":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`), "json")
	require.NoError(t, err)
	assert.Equal(t, []system.AppID{"a", "b"}, cat.HomeGrid)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":        `{"apps":[]}`,
		"missing name": `{"apps":[{"id":"a"}]}`,
		"duplicate":    `{"apps":[{"id":"a","name":"A"},{"id":"a","name":"Again"}]}`,
		"reserved":     `{"apps":[{"id":"system","name":"System"}]}`,
		"unknown grid": `{"apps":[{"id":"a","name":"A"}],"homeGrid":["b"]}`,
		"unsafe id":    `{"apps":[{"id":"../etc","name":"Escape"}]}`,
		"long icon":    `{"apps":[{"id":"a","name":"A","icon":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data), "json")
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "got %v", err)
		})
	}

	_, err := Parse([]byte(`apps: [`), "yaml")
	assert.Error(t, err)

	_, err = Parse([]byte(`{}`), "xml")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoad(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Builtin(), cat)

	path := filepath.Join(t.TempDir(), "apps.yml")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n  - id: x\n    name: X\n"), 0o644))

	cat, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []system.AppID{"x"}, cat.HomeGrid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
