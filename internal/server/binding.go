package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "paramform_session"
	sessionIDKey                 = "sid"
)

// SessionFromContext returns the session bound to a request.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

func contextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// bindSession resolves the browser's session id from its cookie, issuing a
// fresh id when the cookie is missing or cannot be decoded.
func (s *Server) bindSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := s.cookies.Get(r, s.config.SessionName)
		if err != nil {
			s.logger.Debug("discarding unreadable session cookie", zap.Error(err))
		}

		id, _ := cookie.Values[sessionIDKey].(string)
		if _, parseErr := uuid.Parse(id); parseErr != nil {
			id = uuid.NewString()
			cookie.Values[sessionIDKey] = id
			if err := cookie.Save(r, w); err != nil {
				s.logger.Error("save session cookie", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		sess, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), sess)))
	})
}
