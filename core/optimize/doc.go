// Package optimize computes the minimum-cost allocation of a registry with a
// linear program. It serves as a reference point for sampled costs and as a
// feasibility precheck for the sampler.
package optimize
