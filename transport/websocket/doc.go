// Package websocket is the transport gateway between clients and the
// game service. Each accepted connection gets a Client with a read pump
// and a write pump; commands are decoded from a JSON envelope and
// dispatched to the service synchronously from the read pump, which
// preserves per-connection arrival order. Outbound events are addressed
// by connection ID through the hub, which implements the service's
// EventSink.
//
// Identity is established at the upgrade: a JWT passed as ?token= is
// verified against the configured secret and its subject becomes the
// participant identity; without a secret the ?nickname= query value (or
// a generated guest name) is used as the opaque identity. The game core
// never sees tokens.
package websocket
