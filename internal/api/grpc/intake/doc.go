// Package intake exposes the intake endpoint over gRPC.
package intake
