package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"

	"github.com/Tiliavir/adolog/internal/logger"
)

const defaultLoginTimeout = 5 * time.Minute

// LoopbackLauncher listens on the redirect URI's host and port and waits for
// the provider to redirect the browser back with the authorization code.
type LoopbackLauncher struct {
	RedirectURI string
	// Out receives the login URL for the user to open.
	Out io.Writer
	// Open opens a URL in the browser. Defaults to the platform opener when
	// stdout is a terminal.
	Open    func(url string) error
	Timeout time.Duration
	Log     logger.Logger
}

func (l *LoopbackLauncher) Launch(ctx context.Context, authURL string) (string, error) {
	redirect, err := url.Parse(l.RedirectURI)
	if err != nil || redirect.Host == "" {
		return "", fmt.Errorf("invalid redirect URI %q", l.RedirectURI)
	}
	log := l.Log
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("listening for sign-in redirect on %s: %w", redirect.Host, err)
	}

	received := make(chan string, 1)
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	r := mux.NewRouter()
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		full := *redirect
		full.RawQuery = req.URL.RawQuery
		select {
		case received <- full.String():
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if req.URL.Query().Get("code") == "" {
			_, _ = io.WriteString(w, "Sign-in did not complete. Return to the terminal for details.\n")
			return
		}
		_, _ = io.WriteString(w, "Signed in to adolog. You can close this window.\n")
	}).Methods(http.MethodGet)

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("sign-in callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, "To sign in, open this page in a web browser:")
	fmt.Fprintf(out, "  %s\n", authURL)

	if err := l.open(authURL); err != nil {
		log.Debug("could not open browser", "error", err)
	}

	timeout := l.Timeout
	if timeout == 0 {
		timeout = defaultLoginTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case u := <-received:
		return u, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("no sign-in redirect received within %s", timeout)
	}
}

func (l *LoopbackLauncher) open(u string) error {
	if l.Open != nil {
		return l.Open(u)
	}
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("not a terminal")
	}
	return openBrowser(u)
}

func openBrowser(u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		cmd = exec.Command("xdg-open", u)
	}
	return cmd.Start()
}
