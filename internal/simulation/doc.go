// Package simulation runs Monte Carlo rating-ecosystem simulations.
//
// A Runner owns a population of players, a matchmaker, and a single seeded
// random stream. Each round pairs a uniformly chosen subject with a
// band-matched opponent and plays one match through the Elo model. Rounds
// are strictly sequential and deterministic for a fixed seed.
package simulation
