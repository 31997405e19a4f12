// Package actuator drives the physical bell.
//
// Fire energizes the bell for the whole duration and always de-energizes it
// before returning, even when the context is canceled mid-ring.
package actuator
