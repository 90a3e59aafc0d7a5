// Package fuzzy provides nearest-neighbour lookup over small fixed vocabularies.
//
// It is used to turn a mistyped token (a species name, a feature type) into a
// "did you mean" suggestion. Distances are unit-cost Levenshtein edit distances.
package fuzzy
