package enrich

import (
	"net/url"
	"strings"
)

// Family groups endpoints that fail in similar ways.
type Family string

const (
	FamilyIDLookup     Family = "id_lookup"
	FamilySymbolLookup Family = "symbol_lookup"
	FamilyRegion       Family = "region"
	FamilyMapping      Family = "mapping"
	FamilyPrediction   Family = "prediction"
	FamilyOther        Family = "other"
)

// endpointShape is an endpoint split into path segments and query.
type endpointShape struct {
	path     string
	segments []string
	query    url.Values
}

func parseEndpoint(endpoint string) endpointShape {
	path, rawQuery, _ := strings.Cut(endpoint, "?")
	path = "/" + strings.Trim(path, "/")
	query, _ := url.ParseQuery(rawQuery)

	var segments []string
	if trimmed := strings.Trim(path, "/"); trimmed != "" {
		segments = strings.Split(trimmed, "/")
	}
	return endpointShape{path: path, segments: segments, query: query}
}

func (s endpointShape) segment(i int) string {
	if i < len(s.segments) {
		return s.segments[i]
	}
	return ""
}

// mapping endpoints whose second segment is a feature kind, not a species.
var mappingKinds = map[string]bool{"cdna": true, "cds": true, "translation": true}

// FamilyOf classifies an endpoint path.
func FamilyOf(endpoint string) Family {
	s := parseEndpoint(endpoint)
	switch s.segment(0) {
	case "lookup":
		switch s.segment(1) {
		case "id":
			return FamilyIDLookup
		case "symbol":
			return FamilySymbolLookup
		}
	case "overlap", "sequence":
		if s.segment(1) == "region" {
			return FamilyRegion
		}
		if s.segment(1) == "id" {
			return FamilyIDLookup
		}
	case "map":
		return FamilyMapping
	case "vep":
		return FamilyPrediction
	}
	return FamilyOther
}

// speciesIndex returns the position of the species segment, or -1.
func (s endpointShape) speciesIndex() int {
	switch s.segment(0) {
	case "lookup":
		if s.segment(1) == "symbol" && len(s.segments) > 2 {
			return 2
		}
	case "overlap", "sequence":
		if s.segment(1) == "region" && len(s.segments) > 2 {
			return 2
		}
	case "vep":
		if len(s.segments) > 1 {
			return 1
		}
	case "map":
		if len(s.segments) > 1 && !mappingKinds[s.segment(1)] {
			return 1
		}
	case "info":
		if s.segment(1) == "assembly" && len(s.segments) > 2 {
			return 2
		}
	case "xrefs":
		if s.segment(1) == "symbol" && len(s.segments) > 2 {
			return 2
		}
	}
	return -1
}

// SpeciesToken returns the species segment of endpoint, if it has one.
func SpeciesToken(endpoint string) (string, bool) {
	s := parseEndpoint(endpoint)
	i := s.speciesIndex()
	if i < 0 {
		return "", false
	}
	return s.segments[i], true
}

// replaceSegment returns endpoint with segment i replaced, keeping the query.
func (s endpointShape) replaceSegment(i int, value string) string {
	segments := append([]string(nil), s.segments...)
	segments[i] = value
	out := "/" + strings.Join(segments, "/")
	if len(s.query) > 0 {
		out += "?" + s.query.Encode()
	}
	return out
}
