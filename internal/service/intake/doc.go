// Package intake accepts calendar submissions, translates them into
// canonical intake lines and appends them to the intake log.
package intake
