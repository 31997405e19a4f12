// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the intake and console services with call
// timeouts, detection of the current system actor (hostname/username) for
// audit logs, a graceful gRPC serve loop, systemd notifications and process
// lookups used for the single-instance guard.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
