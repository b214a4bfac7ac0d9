// Package scheduler runs report jobs once a day at a fixed wall clock time.
package scheduler
