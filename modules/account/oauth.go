package account

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// authorize redirects the browser to the provider consent page.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	flow, err := h.deps.Providers.Flow(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	target, err := flow.Begin(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// callback completes the provider flow, reconciles the identity into a local
// account and hands the session token to the frontend.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		h.logger.WarnContext(r.Context(), "provider denied authorization",
			logger.Provider(provider),
			logger.Error(oauthDenied(e)),
		)
		h.redirectError(w, r, CodeProviderError)
		return
	}

	flow, err := h.deps.Providers.Flow(provider)
	if err != nil {
		h.redirectFailure(w, r, err)
		return
	}

	profile, err := flow.Complete(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.redirectFailure(w, r, err)
		return
	}

	u, err := h.deps.Reconciler.Reconcile(r.Context(), flow.ProviderID(), profile.ProviderUserID, profile.Email, profile.Name)
	if err != nil {
		h.redirectFailure(w, r, err)
		return
	}

	session, err := h.deps.Sessions.Issue(u)
	if err != nil {
		h.redirectFailure(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "oauth login completed",
		logger.Provider(flow.ProviderID()),
		logger.UserID(u.ID),
	)
	h.redirect(w, r, url.Values{"token": {session.Token}})
}

func (h *Handler) redirectFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorDetail(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "oauth login failed", logger.Error(err))
	} else {
		h.logger.WarnContext(r.Context(), "oauth login rejected", logger.Error(err))
	}
	h.redirectError(w, r, detail.Code)
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	h.redirect(w, r, url.Values{"error": {code}})
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, params url.Values) {
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := target.Query()
	for k, v := range params {
		q[k] = v
	}
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

type oauthDenied string

func (e oauthDenied) Error() string {
	return "provider returned error: " + string(e)
}

// ProviderInfo describes a configured identity provider.
type ProviderInfo struct {
	Provider         string `json:"provider"`
	AuthorizationURL string `json:"authorizationUrl"`
}

// oauthInfo lists the providers this server can log in with.
func (h *Handler) oauthInfo(w http.ResponseWriter, _ *http.Request) {
	names := h.deps.Providers.Providers()
	out := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		out = append(out, ProviderInfo{Provider: name, AuthorizationURL: "/oauth2/authorization/" + name})
	}
	writeData(w, map[string]any{"providers": out, "redirectUri": h.frontendURL})
}
