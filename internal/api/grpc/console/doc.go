// Package console implements the gRPC transport of the operator console.
//
// Messages are protobuf well-known types, so the service descriptor and the
// client are declared by hand instead of being generated.
package console
