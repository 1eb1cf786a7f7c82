package service

import (
	"context"
	"errors"
	"testing"
)

func TestSubscriberServiceSubscribe(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))
	ctx := context.Background()

	sub, created, err := svc.Subscribe(ctx, "  Reader@Example.com ")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !created || sub.Email != "reader@example.com" || sub.Status != "active" {
		t.Fatalf("unexpected subscriber %+v created=%v", sub, created)
	}

	again, created, err := svc.Subscribe(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if created || again.ID != sub.ID {
		t.Fatalf("expected existing subscriber, got %+v created=%v", again, created)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one subscriber, got %d", len(list))
	}
}

func TestSubscriberServiceRejectsInvalidEmail(t *testing.T) {
	svc := NewSubscriberService(setupServiceTestDB(t))
	for _, email := range []string{"", "no-at-sign", "@example.com", "user@", "two words@example.com"} {
		if _, _, err := svc.Subscribe(context.Background(), email); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
}
