// ourstory-webui serves the web surface of Our Story.
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

	"ourstory/blobstore"
	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/healthz"
	"ourstory/httpmetrics"
	"ourstory/identity"
	"ourstory/notify"
	"ourstory/ramadan"
	"ourstory/webui"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	uiListen    = flag.String("ui-listen", "127.0.0.1:8000", "Server address:port for ui endpoint.")
	dataProject = flag.String("data-project", "", "GCP project that contains the application state.")
	mediaBucket = flag.String("media-bucket", "", "GCS bucket that holds uploaded photos.")

	googleOAuthClientID = flag.String("google-oauth-client-id", "", "OAuth client ID accepted for Sign In With Google.")
	memberAEmailHint    = flag.String("member-a-email-hint", "", "Substring identifying member A's email address.")

	ramadanEpoch      = flag.String("ramadan-epoch", "", "First day of the tracking window (YYYY-MM-DD).")
	ramadanWindowDays = flag.Int("ramadan-window-days", ramadan.DefaultWindowDays, "Length of the tracking window in days.")
	ramadanGoal       = flag.Int64("ramadan-goal", ramadan.DefaultGoalPages, "Daily Quran reading goal in pages.")
	periodMember      = flag.String("period-member", "b", "Member the period ledger applies to (a or b).")
	cycleEpoch        = flag.String("cycle-epoch", "", "Day 1 of the cycle calendar (YYYY-MM-DD).")

	enablePush = flag.Bool("enable-push", false, "Enable FCM web push for new notifications?")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.0001, "What ratio of traces should be exported?")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("ui-listen: %v", *uiListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("media-bucket: %v", *mediaBucket)
	glog.Infof("google-oauth-client-id: %v", *googleOAuthClientID)
	glog.Infof("member-a-email-hint: %v", *memberAEmailHint)
	glog.Infof("ramadan-epoch: %v", *ramadanEpoch)
	glog.Infof("ramadan-window-days: %v", *ramadanWindowDays)
	glog.Infof("ramadan-goal: %v", *ramadanGoal)
	glog.Infof("period-member: %v", *periodMember)
	glog.Infof("cycle-epoch: %v", *cycleEpoch)
	glog.Infof("enable-push: %v", *enablePush)
	glog.Infof("monitoring: %v", *monitoring)
	glog.Infof("monitoring-project: %v", *monitoringProject)
	glog.Infof("monitoring-trace-ratio: %v", *monitoringTraceRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	if *monitoring {
		shutdown, err := installMonitoring(ctx)
		if err != nil {
			return fmt.Errorf("while installing monitoring pipelines: %w", err)
		}
		defer shutdown(ctx)
	}

	ramadanWindowEpoch, err := time.ParseInLocation("2006-01-02", *ramadanEpoch, time.Local)
	if err != nil {
		return fmt.Errorf("while parsing --ramadan-epoch: %w", err)
	}

	calendarEpoch, err := time.ParseInLocation("2006-01-02", *cycleEpoch, time.Local)
	if err != nil {
		return fmt.Errorf("while parsing --cycle-epoch: %w", err)
	}

	restingMember, err := identity.Parse(*periodMember)
	if err != nil {
		return fmt.Errorf("while parsing --period-member: %w", err)
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("while creating Cloud Storage client: %w", err)
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

	db := dblayer.New(fstore, *googleOAuthClientID, *memberAEmailHint)
	blobs := blobstore.New(gcs, *mediaBucket)
	tracker := ramadan.NewTracker(fstore, ramadan.Window{Epoch: ramadanWindowEpoch, Days: *ramadanWindowDays}, *ramadanGoal, restingMember)

	ready := healthz.New()
	ready.AddCheck("firestore", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := fstore.Collection(dbtypes.UsersCollection).Limit(1).Documents(ctx).GetAll()
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

	ui := webui.New(db, blobs, center, tracker, calendarEpoch)
	uiServeMux := http.NewServeMux()
	ui.Register(uiServeMux)

	metrics := httpmetrics.New(uiServeMux)
	metrics.RegisterMetrics()

	uiServer := &http.Server{
		Addr:    *uiListen,
		Handler: metrics,

		// The /events stream stays open indefinitely, so no WriteTimeout.
		ReadTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := uiServer.ListenAndServe(); err != nil {
			glog.Fatalf("UI server died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}

// installMonitoring wires the OpenTelemetry SDK to Cloud Trace and Cloud
// Monitoring.  The returned shutdown flushes both pipelines.
func installMonitoring(ctx context.Context) (func(context.Context), error) {
	metricsOpts := []cloudmetrics.Option{}
	traceOpts := []cloudtrace.Option{}
	if *monitoringProject != "" {
		metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(*monitoringProject))
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
	}

	traceExporter, err := cloudtrace.New(traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("while creating Cloud Trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := cloudmetrics.New(metricsOpts...)
	if err != nil {
		return nil, fmt.Errorf("while creating Cloud Monitoring exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	return func(ctx context.Context) {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			glog.Errorf("Error while shutting down trace pipeline: %v", err)
		}
		if err := meterProvider.Shutdown(ctx); err != nil {
			glog.Errorf("Error while shutting down metric pipeline: %v", err)
		}
	}, nil
}
