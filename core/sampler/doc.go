// Package sampler draws random feasible allocations for a registry holding two
// sources and two consumers.
//
// Each candidate is built from two uniform draws. The amount a that consumer A
// receives from the first source is drawn in [0, D_A]; the second source
// covers the rest of A's demand. The amount c that consumer B receives from
// the first source is drawn in [0, min(S_max-a, S_max)]; the second source
// covers the rest of B's demand. Demand equalities therefore hold by
// construction and only the sign and capacity constraints are filtered by
// rejection. The rejection loop is bounded by an attempt cap and by the
// context, and ends with an *InfeasibleError when neither yields a candidate.
//
// GenerateMany repeats the draw, drops exact duplicates without replacing
// them, and pairs every accepted allocation with its cost.
package sampler
