//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package decisionlog

import (
	"github.com/fieldgate/permengine/pkg/core/decisionlog"
)

// ChannelFactory factory for ChannelStream
type ChannelFactory struct {
	ch chan *decisionlog.Record
}

// ChannelStream implements the Stream interface by writing decision records to a channel.
type ChannelStream struct {
	ch chan *decisionlog.Record
}

// NewChannelLogger creates a new Stream for delivering decision records to a
// channel. Tests use it to assert on the records an engine emits.
func NewChannelLogger(ch chan *decisionlog.Record) decisionlog.Factory {
	return &ChannelFactory{ch: ch}
}

// NewStream creates a new Stream to satisfy the Factory interface.
func (f *ChannelFactory) NewStream() (decisionlog.Stream, error) {
	return &ChannelStream{ch: f.ch}, nil
}

// Send delivers a decision record to the channel.
func (s *ChannelStream) Send(m *decisionlog.Record) error {
	s.ch <- m

	return nil
}

// Close finalizes the stream by closing the underlying channel.
func (s *ChannelStream) Close() {
	if s.ch != nil {
		close(s.ch)
	}
}
