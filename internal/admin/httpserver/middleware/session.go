package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	appsession "almagro.dev/catalog-admin/internal/admin/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and persists
// changes back to the client cookie. The Set-Cookie header must go out with
// the response head, so the session is saved right before the handler's
// first write.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				log.Printf("session expired: resetting")
				store.Destroy(w)
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					log.Printf("session load failed: %v", err)
				}
				sess = store.New()
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			sw := &sessionSavingWriter{ResponseWriter: w, store: store, sess: sess}

			next.ServeHTTP(sw, r.WithContext(ctx))

			// Handlers that write nothing still get their session persisted.
			sw.save()
		})
	}
}

// sessionSavingWriter persists the session just before the response head is
// flushed. Session mutations after the first write are lost.
type sessionSavingWriter struct {
	http.ResponseWriter
	store SessionStore
	sess  *appsession.Session
	saved bool
}

func (sw *sessionSavingWriter) save() {
	if sw.saved {
		return
	}
	sw.saved = true
	if err := sw.store.Save(sw.ResponseWriter, sw.sess); err != nil {
		log.Printf("session save failed: %v", err)
	}
}

func (sw *sessionSavingWriter) WriteHeader(statusCode int) {
	sw.save()
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *sessionSavingWriter) Write(b []byte) (int, error) {
	sw.save()
	return sw.ResponseWriter.Write(b)
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
