package enrich

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonwraymond/ensemblops/fuzzy"
)

// MaxSpeciesDistance is the largest edit distance offered as a species
// suggestion.
const MaxSpeciesDistance = 3

const listSpecies = "list valid species with GET /info/species"

// upstreamBody is the JSON error shape returned by the upstream.
type upstreamBody struct {
	Error string `json:"error"`
}

// Enrich builds an EnrichedError for a failed upstream call. body may be nil.
func Enrich(status int, statusText, endpoint string, body []byte) *EnrichedError {
	e := &EnrichedError{StatusCode: status, Endpoint: endpoint}
	shape := parseEndpoint(endpoint)

	switch status {
	case http.StatusTooManyRequests:
		e.Message = "rate limited by upstream"
		e.Suggestion = "wait before retrying and reduce request rate; the upstream allows about 15 requests per second"
	case http.StatusServiceUnavailable:
		e.Message = "upstream unavailable, possibly for maintenance"
		e.Suggestion = "retry later; GET /info/ping reports when the service is back"
	case http.StatusNotFound, http.StatusBadRequest:
		enrichByFamily(e, shape)
	default:
		if statusText == "" {
			statusText = http.StatusText(status)
		}
		e.Message = strings.TrimSpace(fmt.Sprintf("upstream returned %d %s", status, statusText))
		if status >= 500 {
			e.Suggestion = "the upstream failed to process the request; retry later or narrow the request"
		}
	}

	if detail := upstreamDetail(body); detail != "" {
		e.Message += ": " + detail
	}

	// A mistyped species overrides the family guidance.
	if status == http.StatusNotFound || status == http.StatusBadRequest {
		applySpeciesHint(e, shape)
	}
	return e
}

func enrichByFamily(e *EnrichedError, s endpointShape) {
	notFound := e.StatusCode == http.StatusNotFound

	switch FamilyOf(s.path) {
	case FamilyIDLookup:
		id := s.segment(len(s.segments) - 1)
		if notFound {
			e.Message = fmt.Sprintf("identifier %q not found", id)
		} else {
			e.Message = fmt.Sprintf("invalid identifier %q", id)
		}
		e.Suggestion = "check the stable identifier format and that it exists in the current release; versioned IDs such as ENSG00000139618.17 should drop the version suffix"
		e.Example = "/lookup/id/ENSG00000139618"

	case FamilySymbolLookup:
		symbol := s.segment(3)
		if notFound {
			e.Message = fmt.Sprintf("symbol %q not found", symbol)
		} else {
			e.Message = fmt.Sprintf("invalid symbol lookup for %q", symbol)
		}
		e.Suggestion = "check the gene symbol spelling and that it belongs to the requested species; symbols are case-sensitive for some species"
		e.Example = "/lookup/symbol/homo_sapiens/BRCA2"

	case FamilyRegion:
		e.Message = fmt.Sprintf("invalid region %q", s.segment(3))
		e.Suggestion = "use chromosome:start-end with start <= end and a span under 5Mb"
		e.Example = "/overlap/region/homo_sapiens/7:140424943-140624564?feature=gene"
		if s.segment(0) == "sequence" {
			e.Example = "/sequence/region/homo_sapiens/X:1000000..1000100:1"
		}
		applyFeatureHint(e, s)

	case FamilyMapping:
		e.Message = "coordinate mapping failed"
		e.Suggestion = "check the assembly names and region format"
		e.Example = "/map/human/GRCh37/X:1000000..1000100:1/GRCh38"
		applyAssemblyHint(e, s)

	case FamilyPrediction:
		e.Message = "variant effect prediction rejected the variant"
		e.Suggestion = "check the HGVS notation, region allele string or variant identifier"
		e.Example = "/vep/human/hgvs/ENST00000366667:c.803C>T"

	default:
		if notFound {
			e.Message = fmt.Sprintf("resource %s not found", s.path)
			e.Suggestion = "check the endpoint path and identifiers"
		} else {
			e.Message = fmt.Sprintf("bad request to %s", s.path)
			e.Suggestion = "check parameter names and values"
		}
	}
}

// applySpeciesHint replaces the guidance when the species segment is not a
// known species.
func applySpeciesHint(e *EnrichedError, s endpointShape) {
	i := s.speciesIndex()
	if i < 0 {
		return
	}
	token := s.segments[i]
	if fuzzy.KnownSpecies(token) {
		return
	}

	match, ok := fuzzy.Closest(token, fuzzy.Species, MaxSpeciesDistance)
	if !ok {
		e.Suggestion = fmt.Sprintf("unknown species %q; %s", token, listSpecies)
		return
	}
	e.Suggestion = fmt.Sprintf("unknown species %q; did you mean %q?", token, match)
	e.Example = s.replaceSegment(i, match)
}

func applyFeatureHint(e *EnrichedError, s endpointShape) {
	if s.segment(0) != "overlap" {
		return
	}
	for _, feature := range s.query["feature"] {
		if fuzzy.Contains(fuzzy.FeatureTypes, feature) {
			continue
		}
		if match, ok := fuzzy.Closest(feature, fuzzy.FeatureTypes, 2); ok {
			e.Suggestion = fmt.Sprintf("unknown feature %q; did you mean %q?", feature, match)
		} else {
			e.Suggestion = fmt.Sprintf("unknown feature %q; valid features include %s", feature, strings.Join(fuzzy.FeatureTypes[:4], ", "))
		}
		return
	}
}

// applyAssemblyHint checks /map/{species}/{from}/{region}/{to}.
func applyAssemblyHint(e *EnrichedError, s endpointShape) {
	if s.speciesIndex() != 1 || len(s.segments) < 5 {
		return
	}
	for _, i := range []int{2, 4} {
		asm := s.segments[i]
		if fuzzy.Contains(fuzzy.Assemblies, asm) {
			continue
		}
		if match, ok := fuzzy.Closest(asm, fuzzy.Assemblies, 2); ok {
			e.Suggestion = fmt.Sprintf("unknown assembly %q; did you mean %q?", asm, match)
			e.Example = s.replaceSegment(i, match)
		} else {
			e.Suggestion = fmt.Sprintf("unknown assembly %q; list assemblies with GET /info/assembly/{species}", asm)
		}
		return
	}
}

// upstreamDetail extracts the upstream's own error text, if any.
func upstreamDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var ub upstreamBody
	if err := json.Unmarshal(body, &ub); err != nil {
		return ""
	}
	return strings.TrimSpace(ub.Error)
}
