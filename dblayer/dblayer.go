// Package dblayer packages up most actual firestore accesses.
package dblayer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"time"

	"ourstory/blobstore"
	"ourstory/dbtypes"
	"ourstory/identity"
	"ourstory/livemirror"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/iterator"
)

const tracerName = "ourstory/dblayer"

type DB struct {
	firestoreClient     *firestore.Client
	googleOAuthClientID string
	memberAEmailHint    string
}

func New(firestoreClient *firestore.Client, googleOAuthClientID, memberAEmailHint string) *DB {
	return &DB{
		firestoreClient:     firestoreClient,
		googleOAuthClientID: googleOAuthClientID,
		memberAEmailHint:    memberAEmailHint,
	}
}

// Client exposes the underlying firestore client for packages that open
// live mirrors (notify, notifier, webui's event stream).
func (db *DB) Client() *firestore.Client {
	return db.firestoreClient
}

var (
	ErrEmailMustNotBeEmpty        = errors.New("email must not be empty")
	ErrPasswordMustNotBeEmpty     = errors.New("password must not be empty")
	ErrUnknownUserOrWrongPassword = errors.New("unknown user or wrong password")
	ErrUserNotLoggedIn            = errors.New("user is not logged in")
	ErrPermissionDenied           = errors.New("permission denied")
	ErrNotFound                   = errors.New("no document by that id")
	ErrAlreadyRevealed            = errors.New("wish is already revealed")
	ErrStillLocked                = errors.New("wish is still locked")
)

// SessionFromPassword runs the password-based login process for a given
// account, returning a session or an error.  The resolved member identity
// is stamped onto the session document so it is never re-derived later.
func (db *DB) SessionFromPassword(ctx context.Context, email, password string) (*dbtypes.Session, error) {
	if email == "" {
		return nil, ErrEmailMustNotBeEmpty
	}

	if password == "" {
		return nil, ErrPasswordMustNotBeEmpty
	}

	userSnapshot, err := db.lookUpUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if userSnapshot == nil {
		return nil, ErrUnknownUserOrWrongPassword
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %q: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnknownUserOrWrongPassword
	}

	return db.createSession(ctx, userSnapshot.Ref, db.memberForUser(user))
}

// SessionFromGoogleFederation signs in a user based on a Google identity
// token returned from the "Sign in with Google" process.
func (db *DB) SessionFromGoogleFederation(ctx context.Context, idToken string) (*dbtypes.Session, error) {
	payload, err := idtoken.Validate(ctx, idToken, db.googleOAuthClientID)
	if err != nil {
		return nil, fmt.Errorf("while validating ID token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)

	userSnapshot, err := db.lookUpUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// Accounts are provisioned out of band; a Google identity that does
	// not match one of the two accounts is rejected.
	if userSnapshot == nil {
		return nil, ErrUnknownUserOrWrongPassword
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %q: %w", email, err)
	}

	return db.createSession(ctx, userSnapshot.Ref, db.memberForUser(user))
}

func (db *DB) lookUpUserByEmail(ctx context.Context, email string) (*firestore.DocumentSnapshot, error) {
	var userSnapshot *firestore.DocumentSnapshot
	userIter := db.firestoreClient.Collection(dbtypes.UsersCollection).Where("email", "==", email).Documents(ctx)
	defer userIter.Stop()
	for {
		var err error
		userSnapshot, err = userIter.Next()
		if err == iterator.Done {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up user with email %q: %w", email, err)
		}

		// We only consider a single user.
		return userSnapshot, nil
	}
}

// memberForUser prefers the identity provisioned on the user document and
// falls back to resolving from the email hint for accounts created before
// the member field existed.
func (db *DB) memberForUser(user *dbtypes.User) identity.Member {
	if m, err := identity.Parse(user.Member); err == nil {
		return m
	}
	return identity.Resolve(user.Email, db.memberAEmailHint)
}

func (db *DB) createSession(ctx context.Context, userRef *firestore.DocumentRef, member identity.Member) (*dbtypes.Session, error) {
	sessionCookieBytes := make([]byte, 32)
	if _, err := rand.Read(sessionCookieBytes); err != nil {
		return nil, fmt.Errorf("while generating session cookie: %w", err)
	}

	sessionCookie := base64.StdEncoding.EncodeToString(sessionCookieBytes)

	expires := time.Now().Add(18 * time.Hour)

	sessions := db.firestoreClient.Collection(dbtypes.SessionsCollection)
	session := &dbtypes.Session{
		Cookie:  sessionCookie,
		User:    userRef,
		Member:  member.String(),
		Expires: expires,
	}
	if _, _, err := sessions.Add(ctx, session); err != nil {
		return nil, fmt.Errorf("while storing session cookie: %w", err)
	}

	return session, nil
}

// DeleteSession deletes a session by its cookie.
func (db *DB) DeleteSession(ctx context.Context, cookie string) error {
	sessionIter := db.firestoreClient.Collection(dbtypes.SessionsCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up session: %w", err)
		}

		_, err = sessionSnapshot.Ref.Delete(ctx, firestore.LastUpdateTime(sessionSnapshot.UpdateTime))
		if err != nil {
			return fmt.Errorf("while deleting session: %w", err)
		}
	}

	return nil
}

// MemberFromSessionCookie looks up a session from its cookie and returns
// the member identity it carries.
func (db *DB) MemberFromSessionCookie(ctx context.Context, cookie string) (identity.Member, error) {
	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := db.firestoreClient.Collection(dbtypes.SessionsCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		// Session object must have been cleaned up due to expiration; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because there was no session object corresponding to the cookie in the database.")
		return "", ErrUserNotLoggedIn
	}

	session := &dbtypes.Session{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return "", fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		// Session object is expired; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because the session object in the database was expired.")
		return "", ErrUserNotLoggedIn
	}

	member, err := identity.Parse(session.Member)
	if err != nil {
		return "", fmt.Errorf("while parsing member from session: %w", err)
	}

	return member, nil
}

// Decode unmarshals a document snapshot into a fresh *T.  It is the
// standard livemirror decoder for every dbtypes record.
func Decode[T any](snap *firestore.DocumentSnapshot) (*T, error) {
	v := new(T)
	if err := snap.DataTo(v); err != nil {
		return nil, fmt.Errorf("while unmarshaling document %s: %w", snap.Ref.ID, err)
	}
	return v, nil
}

// listDocs runs an ordered scan of one collection under a span.
func listDocs[T any](ctx context.Context, db *DB, collection, spanName string) ([]*T, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	var out []*T
	it := db.firestoreClient.Collection(collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			err = fmt.Errorf("while iterating %s: %w", collection, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		doc, err := Decode[T](snap)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, doc)
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// getDoc fetches one document by id under a span.
func getDoc[T any](ctx context.Context, db *DB, collection, id, spanName string) (*T, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	snap, err := db.firestoreClient.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		err = fmt.Errorf("while retrieving %s/%s: %w", collection, id, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := Decode[T](snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return doc, nil
}

// DateIdeas lists the date planner, newest first.
func (db *DB) DateIdeas(ctx context.Context) ([]*dbtypes.DateIdea, error) {
	return listDocs[dbtypes.DateIdea](ctx, db, dbtypes.DateIdeasCollection, "DB.DateIdeas")
}

func (db *DB) CreateDateIdea(ctx context.Context, d *dbtypes.DateIdea) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	return livemirror.Add(ctx, db.firestoreClient, dbtypes.DateIdeasCollection, map[string]any{
		"title":       d.Title,
		"description": d.Description,
		"location":    d.Location,
		"category":    d.Category,
		"status":      d.Status,
		"plannedFor":  d.PlannedFor,
		"createdBy":   d.CreatedBy,
	})
}

// UpdateDateStatus moves a date idea through idea -> planned -> done.
func (db *DB) UpdateDateStatus(ctx context.Context, id, status string, plannedFor time.Time) error {
	switch status {
	case dbtypes.DateStatusIdea, dbtypes.DateStatusPlanned, dbtypes.DateStatusDone:
	default:
		return dbtypes.ErrBadStatus
	}
	return livemirror.Update(ctx, db.firestoreClient, dbtypes.DateIdeasCollection, id, map[string]any{
		"status":     status,
		"plannedFor": plannedFor,
	})
}

func (db *DB) DeleteDateIdea(ctx context.Context, id string) error {
	return livemirror.Delete(ctx, db.firestoreClient, dbtypes.DateIdeasCollection, id)
}

// TimelineItems lists the shared timeline, newest first.
func (db *DB) TimelineItems(ctx context.Context) ([]*dbtypes.TimelineItem, error) {
	return listDocs[dbtypes.TimelineItem](ctx, db, dbtypes.TimelineCollection, "DB.TimelineItems")
}

func (db *DB) CreateTimelineItem(ctx context.Context, t *dbtypes.TimelineItem) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return livemirror.Add(ctx, db.firestoreClient, dbtypes.TimelineCollection, map[string]any{
		"title":     t.Title,
		"body":      t.Body,
		"date":      t.Date,
		"mood":      t.Mood,
		"photoUrl":  t.PhotoURL,
		"createdBy": t.CreatedBy,
	})
}

func (db *DB) DeleteTimelineItem(ctx context.Context, id string) error {
	return livemirror.Delete(ctx, db.firestoreClient, dbtypes.TimelineCollection, id)
}

// Wishes lists the wish jar, newest first.
func (db *DB) Wishes(ctx context.Context) ([]*dbtypes.Wish, error) {
	return listDocs[dbtypes.Wish](ctx, db, dbtypes.WishesCollection, "DB.Wishes")
}

func (db *DB) CreateWish(ctx context.Context, w *dbtypes.Wish) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	return livemirror.Add(ctx, db.firestoreClient, dbtypes.WishesCollection, map[string]any{
		"text":       w.Text,
		"author":     w.Author,
		"unlockDate": w.UnlockDate,
		"revealed":   false,
	})
}

// RevealWish marks a wish revealed.  Wishes whose unlock date has not
// arrived stay sealed; the gate is enforced here, not just in the UI.
func (db *DB) RevealWish(ctx context.Context, id string, now time.Time) error {
	wish, err := getDoc[dbtypes.Wish](ctx, db, dbtypes.WishesCollection, id, "DB.RevealWish")
	if err != nil {
		return err
	}
	if wish.Revealed {
		return ErrAlreadyRevealed
	}
	if !wish.CanReveal(now) {
		return ErrStillLocked
	}
	return livemirror.Update(ctx, db.firestoreClient, dbtypes.WishesCollection, id, map[string]any{
		"revealed": true,
	})
}

// WatchItems lists the watch/play tracker, newest first.
func (db *DB) WatchItems(ctx context.Context) ([]*dbtypes.WatchItem, error) {
	return listDocs[dbtypes.WatchItem](ctx, db, dbtypes.WatchItemsCollection, "DB.WatchItems")
}

func (db *DB) CreateWatchItem(ctx context.Context, w *dbtypes.WatchItem) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	return livemirror.Add(ctx, db.firestoreClient, dbtypes.WatchItemsCollection, map[string]any{
		"title":     w.Title,
		"kind":      w.Kind,
		"status":    w.Status,
		"rating":    w.Rating,
		"createdBy": w.CreatedBy,
	})
}

func (db *DB) UpdateWatchStatus(ctx context.Context, id, status string, rating int64) error {
	switch status {
	case dbtypes.WatchStatusBacklog, dbtypes.WatchStatusInProgress, dbtypes.WatchStatusDone:
	default:
		return dbtypes.ErrBadStatus
	}
	if rating < 0 || rating > 10 {
		return dbtypes.ErrBadRating
	}
	return livemirror.Update(ctx, db.firestoreClient, dbtypes.WatchItemsCollection, id, map[string]any{
		"status": status,
		"rating": rating,
	})
}

func (db *DB) DeleteWatchItem(ctx context.Context, id string) error {
	return livemirror.Delete(ctx, db.firestoreClient, dbtypes.WatchItemsCollection, id)
}

// PickRandomBacklog selects a uniformly random not-yet-started item, for
// the "what should we watch tonight" button.  Returns false if the
// backlog is empty.
func PickRandomBacklog(items []*dbtypes.WatchItem, rng *mathrand.Rand) (*dbtypes.WatchItem, bool) {
	var backlog []*dbtypes.WatchItem
	for _, it := range items {
		if it.Status == dbtypes.WatchStatusBacklog {
			backlog = append(backlog, it)
		}
	}
	if len(backlog) == 0 {
		return nil, false
	}
	return backlog[rng.Intn(len(backlog))], true
}

// Photos lists the album, newest first.
func (db *DB) Photos(ctx context.Context) ([]*dbtypes.Photo, error) {
	return listDocs[dbtypes.Photo](ctx, db, dbtypes.PhotosCollection, "DB.Photos")
}

func (db *DB) CreatePhoto(ctx context.Context, p *dbtypes.Photo) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	return livemirror.Add(ctx, db.firestoreClient, dbtypes.PhotosCollection, map[string]any{
		"caption":      p.Caption,
		"retrievalUrl": p.RetrievalURL,
		"storageKey":   p.StorageKey,
		"uploadedBy":   p.UploadedBy,
	})
}

// DeletePhoto runs the two-step delete saga: blob first, then document.
// If the blob delete fails the document survives and the user can retry.
// If the document delete fails after the blob is gone, a tombstone is
// written to PhotoTombstones so the inconsistency is discoverable rather
// than silent.
func (db *DB) DeletePhoto(ctx context.Context, blobs *blobstore.Store, id string) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "DB.DeletePhoto")
	defer span.End()

	photo, err := getDoc[dbtypes.Photo](ctx, db, dbtypes.PhotosCollection, id, "DB.DeletePhoto.get")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := blobs.Delete(ctx, photo.RetrievalURL); err != nil {
		err = fmt.Errorf("while deleting photo blob: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := livemirror.Delete(ctx, db.firestoreClient, dbtypes.PhotosCollection, id); err != nil {
		// Blob is already gone.  Record the bad leg for manual cleanup.
		if _, tombErr := livemirror.Add(ctx, db.firestoreClient, dbtypes.PhotoTombstonesCollection, map[string]any{
			"photoId": id,
			"key":     photo.StorageKey,
			"reason":  err.Error(),
		}); tombErr != nil {
			slog.ErrorContext(ctx, "Failed to write photo tombstone", slog.String("photoId", id), slog.Any("err", tombErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
