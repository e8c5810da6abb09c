package chart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := Parse(`{"type":"bar","data":[{"label":"A","value":1}],"options":{"title":"T","yKey":"v"}}`)
	require.NoError(t, err)
	require.Equal(t, Bar, s.Type)
	require.Len(t, s.Data, 1)
	require.Equal(t, "T", s.Options.Title)

	_, err = Parse(`{"type":"bar",`)
	require.Error(t, err)
}

func TestParseLenientShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Spec
		wantErr bool
	}{
		{
			name: "numeric options are stringified",
			raw:  `{"type":"bar","data":[{"label":"A","value":1}],"options":{"title":2024,"yLabel":1.5,"xKey":null}}`,
			want: Spec{Type: Bar, Data: []Record{{"label": "A", "value": 1.0}}, Options: Options{Title: "2024", YLabel: "1.5"}},
		},
		{
			name: "object options read as empty",
			raw:  `{"type":"pie","data":[],"options":{"title":{"text":"x"}}}`,
			want: Spec{Type: Pie, Data: []Record{}},
		},
		{
			name: "data that is not an array is no data",
			raw:  `{"type":"bar","data":{"label":"A"}}`,
			want: Spec{Type: Bar},
		},
		{
			name: "non-object records are empty",
			raw:  `{"type":"bar","data":[1,{"label":"B","value":2}]}`,
			want: Spec{Type: Bar, Data: []Record{{}, {"label": "B", "value": 2.0}}},
		},
		{
			name: "options not an object",
			raw:  `{"type":"line","options":"big"}`,
			want: Spec{Type: Line},
		},
		{name: "scalar document", raw: `42`, want: Spec{}},
		{name: "malformed", raw: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDataShapeRendersEmpty(t *testing.T) {
	s, err := Parse(`{"type":"bar","data":{}}`)
	require.NoError(t, err)
	require.Nil(t, Render(s))
}

func TestKeysDefaults(t *testing.T) {
	cases := []struct {
		spec   Spec
		k1, k2 string
	}{
		{Spec{Type: Bar}, "label", "value"},
		{Spec{Type: Line}, "x", "y"},
		{Spec{Type: Scatter}, "x", "y"},
		{Spec{Type: Pie}, "label", "value"},
		{Spec{Type: Pie, Options: Options{LabelKey: "name", ValueKey: "n"}}, "name", "n"},
		{Spec{Type: Bar, Options: Options{XKey: "month", YKey: "sales"}}, "month", "sales"},
	}
	for _, c := range cases {
		k1, k2 := c.spec.Keys()
		require.Equal(t, c.k1, k1, c.spec.Type)
		require.Equal(t, c.k2, k2, c.spec.Type)
	}
}
