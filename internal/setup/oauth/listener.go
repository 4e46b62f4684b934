package oauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Callback carries the parameters Discord appends to the redirect.
type Callback struct {
	Code    string
	State   string
	GuildID string
	// Err is non-empty when Discord redirected with an error parameter,
	// e.g. the user denied the authorization.
	Err string
}

// Listener is a loopback HTTP server that receives the OAuth redirect.
// It binds to 127.0.0.1 and delivers the first callback it sees; later
// hits of the redirect URL (refresh, back button) get a static page and
// are otherwise ignored.
type Listener struct {
	ln   net.Listener
	srv  *http.Server
	ch   chan Callback
	once sync.Once
}

// NewListener starts a callback listener on addr. An empty addr binds an
// ephemeral port on the loopback interface.
func NewListener(addr string) (*Listener, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	l := &Listener{
		ln: ln,
		ch: make(chan Callback, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", l.handleCallback)

	l.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go l.srv.Serve(ln) //nolint:errcheck // closed via Close

	return l, nil
}

// RedirectURI returns the URI Discord should redirect to.
func (l *Listener) RedirectURI() string {
	return fmt.Sprintf("http://%s/callback", l.ln.Addr().String())
}

// Wait blocks until a callback arrives or the context is cancelled.
func (l *Listener) Wait(ctx context.Context) (Callback, error) {
	select {
	case cb := <-l.ch:
		return cb, nil
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

// Close shuts the listener down.
func (l *Listener) Close() error {
	return l.srv.Close()
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cb := Callback{
		Code:    q.Get("code"),
		State:   q.Get("state"),
		GuildID: q.Get("guild_id"),
		Err:     q.Get("error"),
	}

	delivered := false
	l.once.Do(func() {
		l.ch <- cb
		delivered = true
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case cb.Err != "":
		fmt.Fprint(w, callbackPage("Sign-in not completed",
			"Discord reported: "+cb.Err+". You can close this tab and retry in the terminal."))
	case !delivered:
		fmt.Fprint(w, callbackPage("Already signed in",
			"This sign-in was already handed to emberctl. You can close this tab."))
	default:
		fmt.Fprint(w, callbackPage("Signed in",
			"You can close this tab and return to the terminal."))
	}
}

func callbackPage(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>emberctl</title></head>
<body style="font-family: sans-serif; margin: 4em auto; max-width: 32em; text-align: center;">
<h1>%s</h1><p>%s</p>
</body></html>`, title, body)
}
