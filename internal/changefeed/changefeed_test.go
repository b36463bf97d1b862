package changefeed_test

import (
	"context"
	"testing"

	"confcrm/internal/changefeed"
)

func TestNilPublisherIsNoOp(t *testing.T) {
	var pub *changefeed.Publisher
	pub.Publish(context.Background(), changefeed.Event{})
	pub.Close(context.Background())
}

func TestNewWithoutBrokersReturnsNil(t *testing.T) {
	pub, err := changefeed.New(context.Background(), nil, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub != nil {
		t.Fatal("expected nil publisher when no brokers are configured")
	}
}
