// Package optimizer computes revenue-maximizing ESS dispatch schedules for a
// price series. The default engine is exact dynamic programming over a
// discretized SoC grid (with an optional cycle-budget dimension); an
// LP formulation backed by gonum's simplex is available as an alternative.
// A run is a pure batch computation over immutable inputs, so independent
// runs may execute concurrently without coordination.
package optimizer
