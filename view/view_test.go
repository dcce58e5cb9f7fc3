package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdash/sparql"
)

func TestTable_PreservesOrder(t *testing.T) {
	rs := &sparql.ResultSet{
		Vars: []string{"crm_cd_desc", "crimeCount"},
		Bindings: []sparql.Binding{
			{"crm_cd_desc": sparql.URI("http://example.org/onto#A"), "crimeCount": sparql.Literal("30")},
			{"crm_cd_desc": sparql.URI("http://example.org/onto#B"), "crimeCount": sparql.Literal("20")},
			{"crm_cd_desc": sparql.URI("http://example.org/onto#C")},
		},
	}

	rows := Table(rs, []string{"crm_cd_desc", "crimeCount"})

	want := []sparql.DisplayRow{
		{"crm_cd_desc": "A", "crimeCount": "30"},
		{"crm_cd_desc": "B", "crimeCount": "20"},
		{"crm_cd_desc": "C", "crimeCount": ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_Empty(t *testing.T) {
	rows := Table(&sparql.ResultSet{Bindings: []sparql.Binding{}}, []string{"a"})
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGeo_PrefixStripped(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{
			"location":  sparql.URI("http://example.org/onto#DowntownLA"),
			"latitude":  sparql.Literal("smw:34.0522"),
			"longitude": sparql.Literal("smw:-118.2437"),
		},
	}}

	markers, issues := Geo(rs, DefaultGeoOptions())

	require.Len(t, markers, 1)
	assert.Empty(t, issues)
	assert.Equal(t, Marker{Label: "DowntownLA", Latitude: 34.0522, Longitude: -118.2437, Weight: 1}, markers[0])
}

func TestGeo_DropsUnparsableRow(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{"latitude": sparql.Literal("smw:34.0522"), "longitude": sparql.Literal("smw:-118.2437")},
		{"latitude": sparql.Literal("notanumber"), "longitude": sparql.Literal("-118.0")},
		{"latitude": sparql.Literal("41.8781"), "longitude": sparql.Literal("-87.6298")},
	}}

	markers, issues := Geo(rs, GeoOptions{})

	assert.Len(t, markers, rs.Len()-1, "exactly one row dropped")
	assert.Equal(t, 34.0522, markers[0].Latitude)
	assert.Equal(t, 41.8781, markers[1].Latitude)

	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Row)
	assert.Equal(t, "latitude", issues[0].Var)
	assert.Equal(t, "notanumber", issues[0].Value)
}

func TestGeo_EdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		binding sparql.Binding
		kept    bool
	}{
		{"uri coordinates use local name", sparql.Binding{"latitude": sparql.URI("http://example.org/onto#34.05"), "longitude": sparql.URI("http://example.org/onto/-118.24")}, true},
		{"typed literal", sparql.Binding{"latitude": sparql.TypedLiteral("34.05", "http://www.w3.org/2001/XMLSchema#decimal"), "longitude": sparql.Literal(" -118.24 ")}, true},
		{"unbound longitude", sparql.Binding{"latitude": sparql.Literal("34.05")}, false},
		{"latitude out of range", sparql.Binding{"latitude": sparql.Literal("134.05"), "longitude": sparql.Literal("0")}, false},
		{"longitude out of range", sparql.Binding{"latitude": sparql.Literal("34.05"), "longitude": sparql.Literal("-218.0")}, false},
		{"not finite", sparql.Binding{"latitude": sparql.Literal("NaN"), "longitude": sparql.Literal("0")}, false},
		{"empty after prefix", sparql.Binding{"latitude": sparql.Literal("smw:"), "longitude": sparql.Literal("0")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &sparql.ResultSet{Bindings: []sparql.Binding{tt.binding}}
			markers, issues := Geo(rs, DefaultGeoOptions())
			if tt.kept {
				assert.Len(t, markers, 1)
				assert.Empty(t, issues)
			} else {
				assert.Empty(t, markers)
				assert.Len(t, issues, 1)
			}
		})
	}
}

func TestGeo_Weight(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{"latitude": sparql.Literal("1"), "longitude": sparql.Literal("2"), "count": sparql.Literal("150")},
		{"latitude": sparql.Literal("1"), "longitude": sparql.Literal("2"), "count": sparql.Literal("lots")},
		{"latitude": sparql.Literal("1"), "longitude": sparql.Literal("2")},
	}}

	markers, issues := Geo(rs, GeoOptions{WeightVar: "count"})

	require.Len(t, markers, 3, "weight problems never drop a row")
	assert.Equal(t, 150.0, markers[0].Weight)
	assert.Equal(t, 1.0, markers[1].Weight)
	assert.Equal(t, 1.0, markers[2].Weight)
	require.Len(t, issues, 1)
	assert.Equal(t, "count", issues[0].Var)
}

func TestGeo_DefaultWeightIsCrimeCount(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{"latitude": sparql.Literal("34.05"), "longitude": sparql.Literal("-118.24"),
			"crimeCount": sparql.TypedLiteral("120", "http://www.w3.org/2001/XMLSchema#integer")},
		{"latitude": sparql.Literal("34.18"), "longitude": sparql.Literal("-118.45"),
			"crimeCount": sparql.TypedLiteral("30", "http://www.w3.org/2001/XMLSchema#integer")},
	}}

	markers, issues := Geo(rs, DefaultGeoOptions())

	assert.Empty(t, issues)
	require.Len(t, markers, 2)
	assert.Equal(t, 120.0, markers[0].Weight)
	assert.Equal(t, 30.0, markers[1].Weight)

	c, err := NewClassifier(DefaultSeverityConfig())
	require.NoError(t, err)
	assert.Equal(t, 4, c.Classify(int(markers[0].Weight)).Level)
	assert.Equal(t, 2, c.Classify(int(markers[1].Weight)).Level)
}

func TestGeo_NilAndEmpty(t *testing.T) {
	markers, issues := Geo(nil, DefaultGeoOptions())
	assert.NotNil(t, markers)
	assert.Empty(t, markers)
	assert.Empty(t, issues)
}

func TestSeries(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{"crimeType": sparql.URI("http://example.org/onto#THEFT"), "arrests": sparql.TypedLiteral("120", "http://www.w3.org/2001/XMLSchema#integer")},
		{"crimeType": sparql.URI("http://example.org/onto#ASSAULT"), "arrests": sparql.Literal("n/a")},
		{"crimeType": sparql.Literal("BURGLARY"), "arrests": sparql.Literal("smw:7")},
		{"crimeType": sparql.Literal("ROBBERY")},
	}}

	points, issues := Series(rs, "crimeType", "arrests")

	want := []Point{
		{Category: "THEFT", Value: 120},
		{Category: "ASSAULT", Value: 0, Flagged: true},
		{Category: "BURGLARY", Value: 7},
		{Category: "ROBBERY", Value: 0, Flagged: true},
	}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("Series mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Row)
	assert.Equal(t, 3, issues[1].Row)
}

func TestSeries_RejectsFractions(t *testing.T) {
	rs := &sparql.ResultSet{Bindings: []sparql.Binding{
		{"c": sparql.Literal("x"), "v": sparql.Literal("12.5")},
	}}
	points, issues := Series(rs, "c", "v")
	require.Len(t, points, 1)
	assert.True(t, points[0].Flagged)
	assert.Len(t, issues, 1)
}

func TestSeries_Empty(t *testing.T) {
	points, issues := Series(&sparql.ResultSet{}, "c", "v")
	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Empty(t, issues)
}
