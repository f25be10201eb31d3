package tui

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/nikbrunner/lnk/internal/cache"
	"github.com/nikbrunner/lnk/internal/listctl"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/session"
)

// Remote is everything the TUI asks of the server.
type Remote interface {
	listctl.Remote
	cache.Checker
	AllTags(ctx context.Context) ([]model.Tag, error)
	SearchTags(ctx context.Context, prefix string) ([]model.Tag, error)
	CreateTag(ctx context.Context, name string) (*model.Tag, error)
	GetUserProfile(ctx context.Context) (*model.UserProfile, error)
}

// Session is the login state the TUI drives.
type Session interface {
	Remote() (Remote, error)
	Login(ctx context.Context, baseURL, token string) error
	Logout() error
	Warm(ctx context.Context) error
	Cache() *cache.Cache
	Lookups() *cache.Lookups
}

// FromManager adapts a session manager to the TUI.
func FromManager(m *session.Manager) Session {
	return managerSession{m}
}

type managerSession struct {
	*session.Manager
}

func (s managerSession) Remote() (Remote, error) {
	c, err := s.Client()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OpenURL opens a URL in the default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
