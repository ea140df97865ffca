package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"log/slog"
	"net/http"
)

const (
	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "gap_csrf"

	// CSRFHeaderName carries the token on the admin panel's JSON calls.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField carries the token on the HTML forms: login, budget
	// request and contact.
	CSRFFormField = "csrf_token"

	// CSRFKey is the context key for the current request's token.
	CSRFKey contextKey = "csrf"
)

// NewCSRF returns double-submit cookie protection. Every visitor gets a
// token cookie on first contact; POST, PUT, PATCH and DELETE must echo
// it in the X-CSRF-Token header or the csrf_token form field. The admin
// panel script reads the cookie, so it is not HttpOnly. secure marks it
// Secure.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				token = rand.Text()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), CSRFKey, token))

			if safeMethod(r.Method) || tokenMatches(r, token) {
				next.ServeHTTP(w, r)
				return
			}
			slog.Warn("csrf token mismatch", "method", r.Method, "path", r.URL.Path)
			reject(w, r, http.StatusForbidden, "Sessão expirada. Recarregue a página e tente novamente.")
		})
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

func tokenMatches(r *http.Request, token string) bool {
	submitted := r.Header.Get(CSRFHeaderName)
	if submitted == "" {
		submitted = r.FormValue(CSRFFormField)
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) == 1
}

// CSRFTokenFromCtx returns the token NewCSRF stored in ctx, or "".
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(CSRFKey).(string)
	return token
}
