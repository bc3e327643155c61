// Package notify implements the in-app notification center: the filtered
// per-member feed, the unread badge, sending to the partner, and device
// registration for push delivery.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/identity"
	"ourstory/livemirror"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/iterator"
)

// FeedLimit caps the rendered feed at the most recent entries.  The
// unread badge deliberately does NOT share this cap; see UnreadCount.
const FeedLimit = 10

// Center fronts the Notifications and Devices collections.  The
// messaging client may be nil when push delivery is not configured;
// everything except Push still works.
type Center struct {
	firestoreClient *firestore.Client
	messagingClient *messaging.Client
}

func NewCenter(firestoreClient *firestore.Client, messagingClient *messaging.Client) *Center {
	return &Center{
		firestoreClient: firestoreClient,
		messagingClient: messagingClient,
	}
}

// Feed returns the member's FeedLimit most recent notifications, newest
// first.
func (c *Center) Feed(ctx context.Context, me identity.Member) ([]*dbtypes.Notification, error) {
	var out []*dbtypes.Notification
	it := c.firestoreClient.Collection(dbtypes.NotificationsCollection).
		Where("to", "==", me.String()).
		OrderBy("createdAt", firestore.Desc).
		Limit(FeedLimit).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating notifications: %w", err)
		}
		n, err := dblayer.Decode[dbtypes.Notification](snap)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// WatchFeed opens a live mirror of the member's feed, for the event
// stream that keeps the notification badge current without reloads.
func (c *Center) WatchFeed(ctx context.Context, me identity.Member) *livemirror.Mirror[*dbtypes.Notification] {
	return livemirror.Watch(ctx, c.firestoreClient, dbtypes.NotificationsCollection,
		dblayer.Decode[dbtypes.Notification],
		livemirror.WithFilter("to", "==", me.String()),
		livemirror.WithLimit(FeedLimit))
}

// UnreadCount counts every unread notification addressed to the member.
// The query is unbounded on purpose: capping the badge at the feed window
// would make older unread notifications invisible.
func (c *Center) UnreadCount(ctx context.Context, me identity.Member) (int, error) {
	count := 0
	it := c.firestoreClient.Collection(dbtypes.NotificationsCollection).
		Where("to", "==", me.String()).
		Where("read", "==", false).
		Documents(ctx)
	defer it.Stop()
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("while counting unread notifications: %w", err)
		}
		count++
	}
	return count, nil
}

// Send writes a notification addressed to the sender's partner.  This is
// a closed two-party system, so there is no recipient parameter.
// Creating the document is the success criterion; push relay happens
// asynchronously in the notifier process and its failures are not this
// caller's problem.
func (c *Center) Send(ctx context.Context, from identity.Member, title, body, kind string) error {
	n := &dbtypes.Notification{
		To:    from.Partner().String(),
		From:  from.String(),
		Title: title,
		Body:  body,
		Kind:  kind,
	}
	if err := n.Validate(); err != nil {
		return err
	}

	_, err := livemirror.Add(ctx, c.firestoreClient, dbtypes.NotificationsCollection, map[string]any{
		"to":    n.To,
		"from":  n.From,
		"title": n.Title,
		"body":  n.Body,
		"kind":  n.Kind,
		"read":  false,
	})
	return err
}

// MarkRead flips one notification's read flag.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	return livemirror.Update(ctx, c.firestoreClient, dbtypes.NotificationsCollection, id, map[string]any{
		"read": true,
	})
}

// MarkAllRead flips every unread notification addressed to the member.
func (c *Center) MarkAllRead(ctx context.Context, me identity.Member) error {
	it := c.firestoreClient.Collection(dbtypes.NotificationsCollection).
		Where("to", "==", me.String()).
		Where("read", "==", false).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while iterating unread notifications: %w", err)
		}
		if err := c.MarkRead(ctx, snap.Ref.ID); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDevice upserts the member's push registration.  Registering the
// token that is already stored is a no-op, so clients can call this on
// every page load.
func (c *Center) RegisterDevice(ctx context.Context, me identity.Member, fcmToken string) error {
	ref := c.firestoreClient.Collection(dbtypes.DevicesCollection).Doc(me.String())

	snap, err := ref.Get(ctx)
	if err == nil && snap.Exists() {
		existing := &dbtypes.Device{}
		if err := snap.DataTo(existing); err == nil && existing.FCMToken == fcmToken {
			return nil
		}
	}

	if _, err := ref.Set(ctx, &dbtypes.Device{
		Member:    me.String(),
		FCMToken:  fcmToken,
		UpdatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("while storing device registration: %w", err)
	}
	return nil
}

// DeviceToken returns the member's registered push token, or "" if the
// member never registered a device.
func (c *Center) DeviceToken(ctx context.Context, me identity.Member) (string, error) {
	snap, err := c.firestoreClient.Collection(dbtypes.DevicesCollection).Doc(me.String()).Get(ctx)
	if snap != nil && !snap.Exists() {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("while retrieving device registration: %w", err)
	}
	device := &dbtypes.Device{}
	if err := snap.DataTo(device); err != nil {
		return "", fmt.Errorf("while unmarshaling device registration: %w", err)
	}
	return device.FCMToken, nil
}

// Push sends a best-effort push message to the member's registered
// device.  Missing configuration or a missing registration is not an
// error worth surfacing to users; callers log and move on.
func (c *Center) Push(ctx context.Context, to identity.Member, title, body string) error {
	if c.messagingClient == nil {
		slog.InfoContext(ctx, "Push not configured; skipping", slog.String("to", to.String()))
		return nil
	}

	token, err := c.DeviceToken(ctx, to)
	if err != nil {
		return err
	}
	if token == "" {
		slog.InfoContext(ctx, "No device registered; skipping push", slog.String("to", to.String()))
		return nil
	}

	_, err = c.messagingClient.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/static/icon.png",
			},
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: "/notifications",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("while sending push message: %w", err)
	}
	return nil
}

// SeenSet distinguishes genuinely new documents from the initial bulk
// snapshot: the first Observe primes the set and reports nothing fresh,
// and every later Observe reports only ids never seen before.
type SeenSet struct {
	mu     sync.Mutex
	ids    map[string]bool
	primed bool
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: map[string]bool{}}
}

// Observe records the ids from one snapshot and returns the fresh ones.
func (s *SeenSet) Observe(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, id := range ids {
		if s.ids[id] {
			continue
		}
		s.ids[id] = true
		if s.primed {
			fresh = append(fresh, id)
		}
	}
	s.primed = true
	return fresh
}
