// Package events defines the typed outbound event contract of a debate.
//
// Every occurrence the orchestration wants the observer to see is one of a
// closed set of event kinds:
//
//   - Status (status): free-text progress message from the exchange itself.
//   - Info (info): announcement about the upcoming turn, sourced from system.
//   - Chunk (chunk): append-only text fragment of the in-progress turn.
//   - TurnEnd (turn_end): full accumulated text of a completed turn.
//   - Error (error): human readable failure description.
//
// Any event may carry the ended marker, meaning no further events follow
// for the exchange. On the wire the marker is `"event": "debate_ended"`.
package events
