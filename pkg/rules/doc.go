// Package rules evaluates user-supplied condition/action rules against
// an analysis input and combines the per-rule results.
//
// Rules are supplied per call; the engine does not persist them. Each
// condition type is evaluated by a pluggable Strategy: the built-in
// strategies cover natural-language keyword overlap, logical
// field/operator expressions, and composites of the two. A rule whose
// condition is unmet still yields an explicit SKIP result carrying the
// miss reason; a rule whose evaluation fails is logged and excluded.
//
// Combination is priority-first: successful results are ordered by rule
// priority descending, confidence descending, and the top result wins.
//
// A rule set can also be loaded from a YAML file and watched for
// changes, for callers that manage standing rule files rather than
// passing rules inline.
package rules
