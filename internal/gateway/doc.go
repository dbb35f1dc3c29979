// Package gateway abstracts the messaging channel behind a small synchronous
// API and provides the Slack Web API implementation.
package gateway
