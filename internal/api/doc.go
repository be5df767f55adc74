// Package api exposes job operations behind transport-friendly view types.
// The CLI consumes it today; an HTTP surface could reuse it unchanged.
package api
