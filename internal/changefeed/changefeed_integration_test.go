//go:build integration

package changefeed_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"confcrm/internal/changefeed"
	"confcrm/internal/crm/models"
	"confcrm/pkg/testutil/containers"
)

func TestPublisherRoundTrip(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pub, err := changefeed.New(ctx, rp.Brokers, "confcrm.record-changes.test", logger)
	require.NoError(t, err)
	require.NotNil(t, pub)

	event := changefeed.Event{
		Action:     changefeed.ActionCreated,
		Collection: models.CollectionAttendees,
		RecordID:   uuid.New(),
		ActorID:    uuid.New(),
		At:         time.Now().UTC().Truncate(time.Millisecond),
	}
	pub.Publish(ctx, event)
	pub.Close(ctx)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics("confcrm.record-changes.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got changefeed.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.Action, got.Action)
	require.Equal(t, event.Collection, got.Collection)
	require.Equal(t, event.RecordID, got.RecordID)
}
