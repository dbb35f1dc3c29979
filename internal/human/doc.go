// Package human defines the responder capability: the Slack-backed variant
// that posts a question and blocks for its correlated reply, and the no-op
// variant selected when no credentials are configured.
package human
