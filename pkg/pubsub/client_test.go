package pubsub

import (
	"context"
	"testing"

	"github.com/idoblon/vendorrs-backend/pkg/config"
)

func TestResourceNames(t *testing.T) {
	tests := []struct {
		name    string
		project string
		input   string
		topic   string
		sub     string
	}{
		{name: "short id", project: "vendorrs-prod", input: "orders", topic: "projects/vendorrs-prod/topics/orders", sub: "projects/vendorrs-prod/subscriptions/orders"},
		{name: "trimmed", project: " p ", input: " orders ", topic: "projects/p/topics/orders", sub: "projects/p/subscriptions/orders"},
		{name: "empty", project: "p", input: "  ", topic: "", sub: ""},
		{name: "no project", project: "", input: "orders", topic: "", sub: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topicResourceName(tt.project, tt.input); got != tt.topic {
				t.Fatalf("topic: expected %q got %q", tt.topic, got)
			}
			if got := subscriptionResourceName(tt.project, tt.input); got != tt.sub {
				t.Fatalf("subscription: expected %q got %q", tt.sub, got)
			}
		})
	}

	full := "projects/other/topics/orders"
	if got := topicResourceName("p", full); got != full {
		t.Fatalf("full topic name should pass through, got %q", got)
	}
}

func TestSubscriptionNamesSkipsEmpty(t *testing.T) {
	if names := subscriptionNames(config.PubSubConfig{}); len(names) != 0 {
		t.Fatalf("expected no subscriptions, got %v", names)
	}
	names := subscriptionNames(config.PubSubConfig{OrdersSubscription: " orders-analytics "})
	if len(names) != 1 || names[0] != "orders-analytics" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	if c.OrdersPublisher() != nil || c.Subscription("x") != nil {
		t.Fatal("nil client should return nil handles")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil close should be a no-op: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("nil client ping should fail")
	}
}

func TestNilClientSubscriptionHandles(t *testing.T) {
	var c *Client
	if c.OrdersSubscription() != nil || c.Publisher("orders") != nil {
		t.Fatal("nil client should return nil handles")
	}
	empty := &Client{}
	if empty.OrdersPublisher() != nil {
		t.Fatal("client without a connection should return nil publisher")
	}
	if err := empty.Close(); err != nil {
		t.Fatalf("close without a connection should be a no-op: %v", err)
	}
}
