// Package services hosts shared infrastructure for external integrations:
// the error taxonomy used to classify pipeline failures, context annotations
// that flow job/stage/request identifiers into logs, and the Executor
// abstraction that wraps external process invocation with bounded output
// capture. Subpackages wrap the individual command-line tools.
package services
