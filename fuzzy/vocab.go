package fuzzy

import "strings"

// Species lists the production names of commonly queried species. It is not
// exhaustive; callers needing the full list should query /info/species.
var Species = []string{
	"homo_sapiens",
	"mus_musculus",
	"rattus_norvegicus",
	"danio_rerio",
	"gallus_gallus",
	"sus_scrofa",
	"bos_taurus",
	"canis_lupus_familiaris",
	"felis_catus",
	"equus_caballus",
	"ovis_aries",
	"macaca_mulatta",
	"pan_troglodytes",
	"gorilla_gorilla",
	"xenopus_tropicalis",
	"drosophila_melanogaster",
	"caenorhabditis_elegans",
	"saccharomyces_cerevisiae",
	"oryctolagus_cuniculus",
	"monodelphis_domestica",
}

// FeatureTypes lists the feature names accepted by region overlap endpoints.
var FeatureTypes = []string{
	"gene",
	"transcript",
	"cds",
	"exon",
	"repeat",
	"simple",
	"misc",
	"variation",
	"somatic_variation",
	"structural_variation",
	"somatic_structural_variation",
	"constrained",
	"regulatory",
	"motif",
	"other_regulatory",
	"array_probe",
	"mane",
}

// Assemblies lists the assembly names accepted by coordinate mapping endpoints
// for human.
var Assemblies = []string{
	"GRCh38",
	"GRCh37",
	"NCBI36",
	"NCBI35",
	"NCBI34",
}

// SpeciesAliases maps common names accepted in place of production names.
var SpeciesAliases = map[string]string{
	"human":     "homo_sapiens",
	"mouse":     "mus_musculus",
	"rat":       "rattus_norvegicus",
	"zebrafish": "danio_rerio",
	"chicken":   "gallus_gallus",
	"pig":       "sus_scrofa",
	"cow":       "bos_taurus",
	"dog":       "canis_lupus_familiaris",
	"cat":       "felis_catus",
	"horse":     "equus_caballus",
	"sheep":     "ovis_aries",
	"macaque":   "macaca_mulatta",
	"chimp":     "pan_troglodytes",
	"gorilla":   "gorilla_gorilla",
	"fly":       "drosophila_melanogaster",
	"worm":      "caenorhabditis_elegans",
	"yeast":     "saccharomyces_cerevisiae",
	"rabbit":    "oryctolagus_cuniculus",
	"opossum":   "monodelphis_domestica",
}

// KnownSpecies reports whether token is a listed production name or alias.
func KnownSpecies(token string) bool {
	if Contains(Species, token) {
		return true
	}
	_, ok := SpeciesAliases[strings.ToLower(token)]
	return ok
}
