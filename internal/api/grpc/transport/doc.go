// Package transport holds helpers shared by the hand-declared gRPC services:
// a generic unary method handler and the actor metadata carried by requests.
package transport
