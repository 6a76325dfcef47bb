// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/splice-foundation/splice/lib/codec"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingChannel struct {
	messages [][]byte
	err      error
}

func (c *recordingChannel) Send(message []byte) error {
	c.messages = append(c.messages, message)
	return c.err
}

func TestNotify_SendsSingleCompletionMessage(t *testing.T) {
	t.Parallel()

	channel := &recordingChannel{}
	Notify([]Channel{channel}, quietLogger())

	if len(channel.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(channel.messages))
	}

	var decoded completion
	if err := codec.Unmarshal(channel.messages[0], &decoded); err != nil {
		t.Fatalf("decoding notification: %v", err)
	}
	if decoded.ID != completionID || decoded.Status != "done" {
		t.Errorf("notification = %+v", decoded)
	}
}

func TestNotify_SkipsOnWrongChannelCount(t *testing.T) {
	t.Parallel()

	first := &recordingChannel{}
	second := &recordingChannel{}

	Notify(nil, quietLogger())
	Notify([]Channel{first, second}, quietLogger())

	if len(first.messages) != 0 || len(second.messages) != 0 {
		t.Error("ambiguous channel count must not produce a notification")
	}
}

func TestNotify_SendFailureIgnored(t *testing.T) {
	t.Parallel()

	// Must not panic or escalate.
	Notify([]Channel{&recordingChannel{err: errors.New("peer gone")}}, quietLogger())
}

func TestConnChannel(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		done <- buf[:n]
	}()

	Notify([]Channel{NewConnChannel(client)}, quietLogger())
	client.Close()

	received := <-done
	var decoded completion
	if err := codec.Unmarshal(received, &decoded); err != nil {
		t.Fatalf("decoding from conn: %v", err)
	}
	if decoded.ID != completionID {
		t.Errorf("received id = %d, want %d", decoded.ID, completionID)
	}
}
