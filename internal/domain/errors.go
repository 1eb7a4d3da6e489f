package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. None of these ever
// aborts a running node; each maps to a drop/count/log policy in the
// dispatcher or engine that constructs it.

var (
	// Codec errors (§4.1 / §7 MalformedMessage)
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownVersion   = errors.New("unknown protocol version")
	ErrUnknownType      = errors.New("unknown message type")
	ErrMissingField     = errors.New("missing required field")
	ErrFieldOutOfRange  = errors.New("integer field out of range")

	// Admission errors (§4.10 / §7 PoWRejected)
	ErrPoWMissing      = errors.New("proof of work missing from HELLO")
	ErrPoWInsufficient = errors.New("proof of work difficulty below required minimum")
	ErrPoWInvalid      = errors.New("proof of work hash does not validate")

	// Transport errors (§7 TransportError)
	ErrTransportClosed = errors.New("transport is closed")
	ErrSendFailed      = errors.New("datagram send failed")

	// Bootstrap errors (§7 BootstrapTimeout)
	ErrBootstrapTimeout = errors.New("bootstrap exhausted all attempts without learning a peer")

	// Engine lifecycle errors (§7 CancellationRequested)
	ErrEngineStopped    = errors.New("engine already stopped")
	ErrEngineNotRunning = errors.New("engine is not running")
)
