package vocabulary

// Built-in query templates of the dashboard screens.
const (
	HotspotsQuery = `{{.PrefixDecl}}

SELECT ?location ?latitude ?longitude (COUNT(?dr_no) AS ?crimeCount)
WHERE {
  ?location {{.Prefix}}:hasLatitudeDimension ?latitude ;
            {{.Prefix}}:hasLongitudeDimension ?longitude .
  OPTIONAL { ?dr_no {{.Prefix}}:hasLocation ?location . }
}
GROUP BY ?location ?latitude ?longitude
ORDER BY DESC(?crimeCount)
LIMIT {{.Limit}}
`

	TemporalQuery = `{{.PrefixDecl}}

SELECT DISTINCT ?crm_cd_desc ?crime_year (COUNT(?dr_no) AS ?crimeCount)
WHERE {
  ?dr_no {{.Prefix}}:linkedToCrimeCode ?crm_cd .
  ?crm_cd {{.Prefix}}:hasDescription ?crm_cd_desc .

  FILTER (?crm_cd_desc = {{.Prefix}}:THEFT)

  ?dr_no {{.Prefix}}:occuredOn ?crime_year .
}
GROUP BY ?crm_cd_desc ?crime_year
ORDER BY DESC(?crimeCount)
LIMIT {{.Limit}}
`

	PoliceImpactQuery = `{{.PrefixDecl}}

SELECT ?crimeType (COUNT(?dr_no) AS ?arrests)
WHERE {
  ?dr_no {{.Prefix}}:linkedToCrimeCode ?crm_cd ;
         {{.Prefix}}:hasArrestStatus true .
  ?crm_cd {{.Prefix}}:hasDescription ?crimeType .
}
GROUP BY ?crimeType
ORDER BY DESC(?arrests)
LIMIT {{.Limit}}
`

	CrossCityQuery = `{{.PrefixDecl}}

SELECT ?city (COUNT(?dr_no) AS ?crimeCount)
WHERE {
  ?dr_no {{.Prefix}}:locatedInCity ?city .
}
GROUP BY ?city
ORDER BY DESC(?crimeCount)
LIMIT {{.Limit}}
`
)
