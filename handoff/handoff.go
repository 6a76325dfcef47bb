// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"log/slog"
	"net"

	"github.com/splice-foundation/splice/lib/codec"
)

// completionID identifies the startup completion message. The loader
// waits for exactly this id.
const completionID = 42

// completion is the fixed message sent once interposition is
// installed.
type completion struct {
	ID     uint32 `cbor:"id"`
	Status string `cbor:"status"`
}

// Channel is one notification channel supplied by the loader.
type Channel interface {
	// Send delivers one message. The channel is spent afterward.
	Send(message []byte) error
}

// Notify sends the fixed completion message on the single supplied
// channel. Anything other than exactly one channel is logged and
// skipped; a send failure is logged and ignored. Notify never blocks
// startup on an error.
func Notify(channels []Channel, logger *slog.Logger) {
	if len(channels) != 1 {
		logger.Warn("expected exactly one handoff channel, skipping notification",
			"count", len(channels))
		return
	}

	message, err := codec.Marshal(completion{ID: completionID, Status: "done"})
	if err != nil {
		logger.Error("cannot encode handoff notification", "error", err)
		return
	}
	if err := channels[0].Send(message); err != nil {
		logger.Warn("handoff notification failed", "error", err)
	}
}

// ConnChannel adapts a net.Conn (typically the shim's end of a
// socketpair) as a Channel.
type ConnChannel struct {
	conn net.Conn
}

// NewConnChannel wraps conn. The caller keeps ownership of the
// connection's lifetime.
func NewConnChannel(conn net.Conn) *ConnChannel {
	return &ConnChannel{conn: conn}
}

// Send writes one message to the connection.
func (c *ConnChannel) Send(message []byte) error {
	_, err := c.conn.Write(message)
	return err
}
