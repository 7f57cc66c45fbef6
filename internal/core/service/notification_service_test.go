package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
)

func TestNotificationService_Deliver_Sends(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewNotificationService(notifier, &stubGuard{}, zerolog.Nop())

	n := domain.Notification{ListID: "l1", ToEmail: "bob@example.com", FromUsername: "alice", ListName: "X"}
	if err := svc.Deliver(context.Background(), n); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ListID != "l1" {
		t.Fatalf("unexpected sends: %+v", notifier.sent)
	}
}

func TestNotificationService_Deliver_DuplicateSkipped(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewNotificationService(notifier, &stubGuard{}, zerolog.Nop())

	n := domain.Notification{ListID: "l1", ToEmail: "bob@example.com"}
	_ = svc.Deliver(context.Background(), n)
	if err := svc.Deliver(context.Background(), n); err != nil {
		t.Fatalf("expected no error for duplicate, got %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected a single send, got %d", len(notifier.sent))
	}
}

func TestNotificationService_Deliver_GuardErrorDeliversAnyway(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewNotificationService(notifier, &stubGuard{err: errors.New("redis down")}, zerolog.Nop())

	if err := svc.Deliver(context.Background(), domain.Notification{ListID: "l1"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected delivery despite guard failure")
	}
}

func TestNotificationService_Deliver_TransportErrorNotRetried(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("smtp refused")}
	guard := &stubGuard{}
	svc := NewNotificationService(notifier, guard, zerolog.Nop())

	n := domain.Notification{ListID: "l1"}
	if err := svc.Deliver(context.Background(), n); err == nil {
		t.Fatalf("expected transport error to be reported to the caller")
	}

	notifier.err = nil
	if err := svc.Deliver(context.Background(), n); err != nil {
		t.Fatalf("second deliver: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("a failed list id must not be mailed again, got %d sends", len(notifier.sent))
	}
}
