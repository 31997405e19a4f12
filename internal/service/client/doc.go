// Package client implements the bellctl operator commands.
//
// Submissions go to the intake service, manual rings to the console hosted
// by the trigger process. Reports, diagnostics and status are read locally
// from the data directory.
package client
