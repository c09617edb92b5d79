package types

import "errors"

var (
	// ErrInsufficientPoints is returned when fewer than two located stops
	// are available for routing. Fatal to the synchronous phase.
	ErrInsufficientPoints = errors.New("at least two located stops are required")

	// ErrProviderUnavailable is returned after the routing provider kept
	// rate-limiting or failing through the bounded retry budget.
	ErrProviderUnavailable = errors.New("routing provider unavailable")

	// ErrNoRouteFound is returned when the provider answered successfully
	// but produced no trips. Not retried.
	ErrNoRouteFound = errors.New("no route found for the given stops")

	// ErrAllModelsFailed is returned when every model in the insight chain
	// was rejected or timed out. Recovered locally via the fallback
	// synthesizer, never surfaced to the end user.
	ErrAllModelsFailed = errors.New("all models in the chain failed")

	// ErrNotFound is returned by the repository when no itinerary exists
	// under the requested id.
	ErrNotFound = errors.New("itinerary not found")
)
