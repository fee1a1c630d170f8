// Package sse decodes Server-Sent Events framing from a byte stream that
// arrives in arbitrary, non frame-aligned chunks.
//
// Events are separated by a blank line. Each event carries an optional
// "event:" line naming it and any number of "data:" lines whose values are
// joined with a single newline. The decoder assumes the blank-line delimiter
// never appears inside a data fragment; the upstream protocol guarantees this.
//
// Decoding is split-invariant: feeding the same bytes in any chunking yields
// the same events in the same order.
package sse
