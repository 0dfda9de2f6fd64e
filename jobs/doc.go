// Package jobs runs periodic maintenance tasks.
package jobs
