// Package protocol owns the wire contract.
//
// Ownership boundary:
// - wire: buffers, scalar codecs and the pack/unpack dispatcher
// - frame: length-prefixed packet framing built on wire
// - schema: packet id to descriptor registry and validation
package protocol
