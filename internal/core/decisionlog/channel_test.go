//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package decisionlog_test

import (
	"testing"

	channellog "github.com/fieldgate/permengine/internal/core/decisionlog"
	"github.com/fieldgate/permengine/pkg/core/decisionlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelStreamDelivery(t *testing.T) {
	ch := make(chan *decisionlog.Record, 1)
	stream, err := channellog.NewChannelLogger(ch).NewStream()
	require.NoError(t, err)

	record := &decisionlog.Record{ID: "d1"}
	require.NoError(t, stream.Send(record))
	assert.Same(t, record, <-ch)
}

func TestChannelStreamClose(t *testing.T) {
	ch := make(chan *decisionlog.Record)
	stream, err := channellog.NewChannelLogger(ch).NewStream()
	require.NoError(t, err)

	stream.Close()
	_, open := <-ch
	assert.False(t, open)
}
