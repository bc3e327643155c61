// Package notifier is the long-running relay between the Notifications
// collection and the outside world: new documents become push messages to
// the recipient's registered device, and a periodic pass emails a digest
// of whatever is still unread.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/identity"
	"ourstory/livemirror"
	"ourstory/notify"

	"cloud.google.com/go/firestore"
	"github.com/dgraph-io/badger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// watchWindow is how many recent notifications the relay watches.  New
// documents always enter at the top of the createdAt-descending query, so
// the window only needs to outpace the burst rate, not hold history.
const watchWindow = 50

// Notifier relays notification documents to push and email.
type Notifier struct {
	firestoreClient *firestore.Client
	center          *notify.Center
	sendgridClient  *sendgrid.Client
	ledger          *badger.DB
	digestPeriod    time.Duration
	digestEmails    map[identity.Member]string
	baseURL         string

	// seen guards against replaying the initial snapshot within this
	// process; the ledger guards across restarts.
	seen *notify.SeenSet
}

func New(firestoreClient *firestore.Client, center *notify.Center, sendgridClient *sendgrid.Client, ledger *badger.DB, digestPeriod time.Duration, digestEmails map[identity.Member]string, baseURL string) *Notifier {
	return &Notifier{
		firestoreClient: firestoreClient,
		center:          center,
		sendgridClient:  sendgridClient,
		ledger:          ledger,
		digestPeriod:    digestPeriod,
		digestEmails:    digestEmails,
		baseURL:         baseURL,
		seen:            notify.NewSeenSet(),
	}
}

// Run blocks until ctx is cancelled, relaying pushes as notification
// documents appear and sending digests every digestPeriod.
func (n *Notifier) Run(ctx context.Context) error {
	mirror := livemirror.Watch(ctx, n.firestoreClient, dbtypes.NotificationsCollection,
		dblayer.Decode[dbtypes.Notification],
		livemirror.WithLimit(watchWindow))
	defer mirror.Close()

	ticker := time.NewTicker(n.digestPeriod)
	defer ticker.Stop()

	// Digest once right away --- ticker doesn't fire until the tick
	// period has elapsed.
	if err := n.digestPass(ctx); err != nil {
		slog.ErrorContext(ctx, "Error during digest pass", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case docs := <-mirror.Updates():
			n.relay(ctx, docs)
		case <-ticker.C:
			if err := n.digestPass(ctx); err != nil {
				slog.ErrorContext(ctx, "Error during digest pass", slog.Any("err", err))
			}
		}
	}
}

// relay pushes the genuinely new documents from one snapshot.  Push
// failures are logged and the document is still marked relayed: push is
// best-effort, and the digest pass catches anything a device missed.
func (n *Notifier) relay(ctx context.Context, docs []*dbtypes.Notification) {
	ids := make([]string, len(docs))
	byID := make(map[string]*dbtypes.Notification, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		byID[d.ID] = d
	}

	for _, id := range n.seen.Observe(ids) {
		doc := byID[id]

		relayed, err := n.alreadyRelayed(id)
		if err != nil {
			slog.ErrorContext(ctx, "Ledger read failed", slog.String("id", id), slog.Any("err", err))
			continue
		}
		if relayed {
			continue
		}

		to, err := identity.Parse(doc.To)
		if err != nil {
			slog.ErrorContext(ctx, "Notification with bad recipient", slog.String("id", id), slog.Any("err", err))
			continue
		}

		slog.InfoContext(ctx, "Relaying notification", slog.String("id", id), slog.String("to", doc.To), slog.String("kind", doc.Kind))
		if err := n.center.Push(ctx, to, doc.Title, doc.Body); err != nil {
			slog.ErrorContext(ctx, "Push relay failed", slog.String("id", id), slog.Any("err", err))
		}

		if err := n.markRelayed(id); err != nil {
			slog.ErrorContext(ctx, "Ledger write failed", slog.String("id", id), slog.Any("err", err))
		}
	}
}

func ledgerKey(id string) []byte {
	return []byte("relayed/" + id)
}

func (n *Notifier) alreadyRelayed(id string) (bool, error) {
	err := n.ledger.View(func(txn *badger.Txn) error {
		_, err := txn.Get(ledgerKey(id))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("while reading relay ledger: %w", err)
	}
	return true, nil
}

func (n *Notifier) markRelayed(id string) error {
	err := n.ledger.Update(func(txn *badger.Txn) error {
		return txn.Set(ledgerKey(id), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("while writing relay ledger: %w", err)
	}
	return nil
}

// digestPass emails each member a summary of their unread notifications.
func (n *Notifier) digestPass(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting digest pass")
	defer func() {
		slog.InfoContext(ctx, "Finished digest pass")
	}()

	if n.sendgridClient == nil {
		return nil
	}

	for _, member := range []identity.Member{identity.MemberA, identity.MemberB} {
		email := n.digestEmails[member]
		if email == "" {
			continue
		}

		unread, err := n.center.UnreadCount(ctx, member)
		if err != nil {
			return fmt.Errorf("while counting unread for %s: %w", member, err)
		}
		if unread == 0 {
			continue
		}

		feed, err := n.center.Feed(ctx, member)
		if err != nil {
			return fmt.Errorf("while loading feed for %s: %w", member, err)
		}

		if err := n.sendDigestEmail(ctx, email, unread, feed); err != nil {
			return fmt.Errorf("while sending digest to %s: %w", member, err)
		}
	}

	return nil
}

const digestPlain = `
You have {{.Unread}} unread note(s) waiting for you.
{{range .Recent}}{{if not .Read}}
* {{.Title}}: {{.Body}}
{{- end}}{{end}}

Open Our Story: {{.BaseURL}}/notifications
`

var digestPlainTemplate = template.Must(template.New("digest").Parse(digestPlain))

func (n *Notifier) sendDigestEmail(ctx context.Context, email string, unread int, recent []*dbtypes.Notification) error {
	message := mail.NewV3Mail()
	message.From = mail.NewEmail("Our Story", "bot@ourstory.app")
	message.Subject = "You have unread notes"

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail("", email))
	message.Personalizations = append(message.Personalizations, personalization)

	textContent := &bytes.Buffer{}
	err := digestPlainTemplate.Execute(textContent, struct {
		Unread  int
		Recent  []*dbtypes.Notification
		BaseURL string
	}{unread, recent, n.baseURL})
	if err != nil {
		return fmt.Errorf("while templating plain-text email content: %w", err)
	}

	message.Content = append(message.Content, mail.NewContent("text/plain", textContent.String()))

	resp, err := n.sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through Sendgrid: %d %s", resp.StatusCode, resp.Body)
	}

	return nil
}
