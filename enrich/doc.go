// Package enrich turns upstream failures into actionable errors.
//
// An EnrichedError carries the upstream status, the endpoint that failed, a
// human-readable message, and where one can be derived a suggestion and a
// corrected example request. The goal is that a caller (often a language
// model) can fix its own request without a human in the loop.
//
// Dispatch is first on status (429, 503, 404, 400, anything else) and then,
// for 404 and 400, on the endpoint family. Species, assembly and feature
// tokens are checked against fixed vocabularies with the fuzzy package.
package enrich
