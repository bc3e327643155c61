// ourstory-notifier is the long-lived relay that turns new notification
// documents into web pushes and periodically emails a digest of unread
// notifications.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ourstory/dbtypes"
	"ourstory/healthz"
	"ourstory/identity"
	"ourstory/notifier"
	"ourstory/notify"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	firebase "firebase.google.com/go/v4"
	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"github.com/sendgrid/sendgrid-go"
)

var (
	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	dataProject = flag.String("data-project", "", "GCP project that contains the application state.")

	sendgridKeySecret = flag.String("sendgrid-key-secret", "sendgrid-api-key", "GCP Secret Manager secret name containing SendGrid API key.")

	ledgerDir    = flag.String("ledger-dir", "/var/lib/ourstory-notifier", "Directory for the relay ledger.")
	digestPeriod = flag.Duration("digest-period", 24*time.Hour, "Time between unread digest emails.")
	memberAEmail = flag.String("member-a-email", "", "Digest email address for member A.")
	memberBEmail = flag.String("member-b-email", "", "Digest email address for member B.")
	baseURL      = flag.String("base-url", "", "Public URL of the web UI, linked from digest emails.")

	enablePush = flag.Bool("enable-push", true, "Enable FCM web push for new notifications?")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("sendgrid-key-secret: %v", *sendgridKeySecret)
	glog.Infof("ledger-dir: %v", *ledgerDir)
	glog.Infof("digest-period: %v", *digestPeriod)
	glog.Infof("member-a-email: %v", *memberAEmail)
	glog.Infof("member-b-email: %v", *memberBEmail)
	glog.Infof("base-url: %v", *baseURL)
	glog.Infof("enable-push: %v", *enablePush)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	sg, err := newSendgridClient(ctx)
	if err != nil {
		return fmt.Errorf("while creating Sendgrid client: %w", err)
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	center := notify.NewCenter(fstore, nil)
	if *enablePush {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: *dataProject})
		if err != nil {
			return fmt.Errorf("while creating Firebase app: %w", err)
		}
		messagingClient, err := app.Messaging(ctx)
		if err != nil {
			return fmt.Errorf("while creating FCM messaging client: %w", err)
		}
		center = notify.NewCenter(fstore, messagingClient)
	}

	ledger, err := badger.Open(badger.DefaultOptions(*ledgerDir))
	if err != nil {
		return fmt.Errorf("while opening relay ledger: %w", err)
	}
	defer ledger.Close()

	digestEmails := map[identity.Member]string{}
	if *memberAEmail != "" {
		digestEmails[identity.MemberA] = *memberAEmail
	}
	if *memberBEmail != "" {
		digestEmails[identity.MemberB] = *memberBEmail
	}

	relay := notifier.New(fstore, center, sg, ledger, *digestPeriod, digestEmails, *baseURL)

	ready := healthz.New()
	ready.AddCheck("firestore", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := fstore.Collection(dbtypes.NotificationsCollection).Limit(1).Documents(ctx).GetAll()
		return err
	})

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", ready)
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := relay.Run(ctx); err != nil && err != context.Canceled {
			glog.Fatalf("Relay died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}

func newSendgridClient(ctx context.Context) (*sendgrid.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	secretClient, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("while creating Secret Manager client: %w", err)
	}
	defer secretClient.Close()

	resp, err := secretClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", *dataProject, *sendgridKeySecret),
	})
	if err != nil {
		return nil, fmt.Errorf("while pulling secret: %w", err)
	}

	return sendgrid.NewSendClient(string(resp.GetPayload().GetData())), nil
}
