// Package pubsub owns streaming subscriptions over the server websocket.
//
// A Session walks Connecting -> Sending -> Listening and ends in one of
// Draining/Closed, TimedOut or Failed. Closed, TimedOut and Drained are
// normal terminations and never surface as errors.
package pubsub
