package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const emberPrefab = `{
  "GameObject": {
    "name": "Ember",
    "layer": "gameplay",
    "Components": {
      "Transform": {"x": 0, "y": 0},
      "RigidBody": {"halfWidth": 0.2, "halfHeight": 0.2},
      "Sprite": {"texture": "ember_sheet"}
    }
  }
}`

func TestParsePreservesComponentOrder(t *testing.T) {
	doc, err := Parse([]byte(emberPrefab))
	require.NoError(t, err)
	require.Equal(t, "Ember", doc.Name)
	require.Equal(t, "gameplay", doc.Layer)

	var names []string
	for _, e := range doc.Components {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"Transform", "RigidBody", "Sprite"}, names)
	require.Equal(t, 0.2, doc.Component("RigidBody")["halfWidth"])
}

func TestParseRejectsNonPrefabs(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"no_game_object", `{"Level": {}}`, ErrNotPrefab},
		{"no_name", `{"GameObject": {"Components": {}}}`, ErrMissingField},
		{"no_components", `{"GameObject": {"name": "x"}}`, ErrMissingField},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.body))
			require.ErrorIs(t, err, c.want)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(emberPrefab))
	require.NoError(t, err)

	out, err := doc.Encode()
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, doc.Name, back.Name)
	require.Equal(t, doc.Layer, back.Layer)
	require.Equal(t, len(doc.Components), len(back.Components))
	for i := range doc.Components {
		require.Equal(t, doc.Components[i].Name, back.Components[i].Name)
	}
}

func TestScanSkipsNonConformingAndLastWins(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a_ember.json", emberPrefab)
	write("b_other.json", `{"settings": {"volume": 1}}`)
	write("c_ember.json", `{"GameObject": {"name": "Ember", "layer": "later", "Components": {"Transform": {}}}}`)
	write("notes.txt", "not json")

	docs, err := Scan(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "later", docs["Ember"].Layer, "later file must win the name collision")
}

func TestParseLevel(t *testing.T) {
	body := `{
	  "name": "arena",
	  "GameObjects": [` + emberPrefab + `],
	  "gates": [{"name": "east", "x": 5, "y": 0, "width": 1, "height": 2, "targetLevel": "level2.json"}]
	}`
	lvl, err := ParseLevel([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "arena", lvl.Name)
	require.Len(t, lvl.Objects, 1)
	require.Equal(t, "Ember", lvl.Objects[0].Name)
	require.Len(t, lvl.Gates, 1)
	require.Equal(t, "level2.json", lvl.Gates[0].TargetLevel)
}
