package enrich

import (
	"errors"
	"strings"
	"testing"
)

func TestEnrich_StatusDispatch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		endpoint  string
		wantClass error
		wantMsg   string
	}{
		{name: "rate limited", status: 429, endpoint: "/lookup/id/ENSG1", wantClass: ErrRateLimited, wantMsg: "rate limited"},
		{name: "unavailable", status: 503, endpoint: "/info/ping", wantClass: ErrUnavailable, wantMsg: "unavailable"},
		{name: "not found", status: 404, endpoint: "/lookup/id/ENSG1", wantClass: ErrNotFound, wantMsg: "not found"},
		{name: "bad request", status: 400, endpoint: "/lookup/id/ENSG1", wantClass: ErrBadRequest, wantMsg: "invalid identifier"},
		{name: "server", status: 500, endpoint: "/lookup/id/ENSG1", wantClass: ErrServer, wantMsg: "upstream returned 500"},
		{name: "other", status: 418, endpoint: "/lookup/id/ENSG1", wantClass: ErrUpstream, wantMsg: "upstream returned 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Enrich(tt.status, "", tt.endpoint, nil)
			if e.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", e.StatusCode, tt.status)
			}
			if e.Endpoint != tt.endpoint {
				t.Errorf("Endpoint = %q", e.Endpoint)
			}
			if !errors.Is(e, tt.wantClass) {
				t.Errorf("errors.Is(%v) = false", tt.wantClass)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want substring %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestEnrich_FamilyGuidance(t *testing.T) {
	tests := []struct {
		endpoint    string
		wantExample string
	}{
		{endpoint: "/lookup/id/ENSGXYZ", wantExample: "/lookup/id/ENSG00000139618"},
		{endpoint: "/lookup/symbol/homo_sapiens/BRCAX", wantExample: "/lookup/symbol/homo_sapiens/BRCA2"},
		{endpoint: "/overlap/region/human/7:200-100", wantExample: "/overlap/region/homo_sapiens/7:140424943-140624564?feature=gene"},
		{endpoint: "/sequence/region/human/X:5..1", wantExample: "/sequence/region/homo_sapiens/X:1000000..1000100:1"},
		{endpoint: "/vep/human/hgvs/bogus", wantExample: "/vep/human/hgvs/ENST00000366667:c.803C>T"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			e := Enrich(400, "Bad Request", tt.endpoint, nil)
			if e.Suggestion == "" {
				t.Error("Suggestion should be set")
			}
			if e.Example != tt.wantExample {
				t.Errorf("Example = %q, want %q", e.Example, tt.wantExample)
			}
		})
	}
}

func TestEnrich_SpeciesDidYouMean(t *testing.T) {
	e := Enrich(404, "Not Found", "/lookup/symbol/homo_sapien/BRCA2", nil)

	if !strings.Contains(e.Suggestion, `did you mean "homo_sapiens"`) {
		t.Errorf("Suggestion = %q", e.Suggestion)
	}
	if e.Example != "/lookup/symbol/homo_sapiens/BRCA2" {
		t.Errorf("Example = %q", e.Example)
	}
}

func TestEnrich_SpeciesNoMatch(t *testing.T) {
	e := Enrich(400, "Bad Request", "/overlap/region/xyzabc/1:1-100?feature=gene", nil)

	if !strings.Contains(e.Suggestion, "/info/species") {
		t.Errorf("Suggestion = %q, want pointer to /info/species", e.Suggestion)
	}
}

func TestEnrich_KnownSpeciesKeepsFamilyGuidance(t *testing.T) {
	e := Enrich(404, "Not Found", "/lookup/symbol/human/NOPE", nil)
	if strings.Contains(e.Suggestion, "unknown species") {
		t.Errorf("Suggestion = %q, should keep symbol guidance", e.Suggestion)
	}
}

func TestEnrich_FeatureHint(t *testing.T) {
	e := Enrich(400, "Bad Request", "/overlap/region/human/7:1-100?feature=genes", nil)
	if !strings.Contains(e.Suggestion, `did you mean "gene"`) {
		t.Errorf("Suggestion = %q", e.Suggestion)
	}
}

func TestEnrich_AssemblyHint(t *testing.T) {
	e := Enrich(400, "Bad Request", "/map/human/GRh37/X:1..100:1/GRCh38", nil)
	if !strings.Contains(e.Suggestion, `did you mean "GRCh37"`) {
		t.Errorf("Suggestion = %q", e.Suggestion)
	}
	if e.Example != "/map/human/GRCh37/X:1..100:1/GRCh38" {
		t.Errorf("Example = %q", e.Example)
	}
}

func TestEnrich_UpstreamBodyFolded(t *testing.T) {
	body := []byte(`{"error":"No valid lookup found for ID ENSG0"}`)
	e := Enrich(400, "Bad Request", "/lookup/id/ENSG0", body)

	if !strings.HasSuffix(e.Message, ": No valid lookup found for ID ENSG0") {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestEnrich_NonJSONBodyIgnored(t *testing.T) {
	e := Enrich(502, "Bad Gateway", "/info/ping", []byte("<html>gateway</html>"))
	if e.Message != "upstream returned 502 Bad Gateway" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestEnrichedError_Error(t *testing.T) {
	e := &EnrichedError{Message: "m", Suggestion: "s", Example: "x"}
	if got := e.Error(); got != "m; suggestion: s; example: x" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&EnrichedError{Message: "only"}).Error(); got != "only" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEnrichedError_Transient(t *testing.T) {
	for status, want := range map[int]bool{429: true, 500: true, 503: true, 400: false, 404: false} {
		if got := (&EnrichedError{StatusCode: status}).Transient(); got != want {
			t.Errorf("Transient(%d) = %v, want %v", status, got, want)
		}
	}
}
