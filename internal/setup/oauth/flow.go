package oauth

import (
	"context"
	"fmt"

	"emberctl/internal/logger"

	"github.com/pkg/browser"
)

// authURLClient is the slice of the API client the flow needs.
type authURLClient interface {
	AuthURL(ctx context.Context) (string, error)
}

// Flow runs the interactive half of the sign-in: fetch the authorization
// URL, hand it to the user's browser, and wait for Discord's redirect on
// the loopback listener.
type Flow struct {
	Client   authURLClient
	Listener *Listener
	Log      *logger.Logger

	// NoBrowser skips opening the browser and only prints the URL.
	NoBrowser bool

	// OpenURL opens a URL in the user's browser. Defaults to
	// browser.OpenURL; overridable in tests.
	OpenURL func(url string) error

	// PrintURL shows the URL when the browser cannot be opened.
	PrintURL func(url string)
}

// StartAuth fetches the authorization URL, opens it, and blocks until the
// redirect arrives or ctx is cancelled. A browser that refuses to open is
// not fatal; the URL is printed for the user to follow by hand.
func (f *Flow) StartAuth(ctx context.Context) (Callback, error) {
	log := f.Log
	if log == nil {
		log = logger.Nop()
	}

	authURL, err := f.Client.AuthURL(ctx)
	if err != nil {
		return Callback{}, logger.WrapError(err, "failed to fetch authorization URL")
	}

	open := f.OpenURL
	if open == nil {
		open = browser.OpenURL
	}

	if f.NoBrowser {
		f.printURL(authURL)
	} else if err := open(authURL); err != nil {
		log.Warn("could not open browser", logger.WithError(err))
		f.printURL(authURL)
	}

	cb, err := f.Listener.Wait(ctx)
	if err != nil {
		return Callback{}, err
	}

	if cb.Err != "" {
		return cb, fmt.Errorf("discord authorization failed: %s", cb.Err)
	}
	if cb.Code == "" {
		return cb, fmt.Errorf("redirect arrived without a code")
	}

	return cb, nil
}

func (f *Flow) printURL(url string) {
	if f.PrintURL != nil {
		f.PrintURL(url)
		return
	}
	fmt.Printf("Open this URL to sign in with Discord:\n\n  %s\n\n", url)
}
