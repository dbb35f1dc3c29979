// Package correlator matches a posted question with its human reply.
//
// # Overview
//
// Posting a question yields an ordering token (the Slack thread timestamp).
// The correlator polls the channel until a message qualifies as a reply to
// that token, then hands back the cleaned, wrapped reply text.
//
// # Matching
//
// Two paths are checked on every cycle, thread first:
//
//   - Thread replies: messages nested under the question's thread that order
//     strictly after it, are human-authored, and carry no subtype other than
//     thread_broadcast.
//   - Mentions: when a responder tag is configured, recent top-level channel
//     messages that mention the tag and order strictly after the question.
//     This catches humans who answer in the channel instead of the thread.
//
// The mention marker is stripped from the matched text and the result is
// wrapped with the role's continuation instruction.
//
// # Poll Pacing
//
// The first check runs immediately to catch near-instant replies. Subsequent
// checks back off from 500ms in 250ms steps up to a 4s ceiling. A transient
// channel error costs a 2s penalty and polling resumes. Rate limits honor
// the channel's retry-after delay; a run of consecutive rate limits past the
// configured bound abandons the wait with a hard failure.
//
// # Outcomes
//
// WaitForReply returns the reply, ErrNoReply when the deadline elapses with
// no qualifying message, or the context's error when the caller cancels.
package correlator
