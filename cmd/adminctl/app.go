package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/directory"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
	"github.com/99minutos/admin-console/internal/infrastructure/telemetry"
	"github.com/99minutos/admin-console/internal/pkg/config"
	"github.com/99minutos/admin-console/pkg/logger"
)

// Guard targets double as the commands suggested to the user.
const (
	loginCommand  = "login"
	whoamiCommand = "whoami"
)

// app holds what every command shares: flag values, I/O and collaborators
// built from them.
type app struct {
	apiURL      string
	timeout     time.Duration
	credentials string
	out         string

	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	guard *service.Guard
}

func newApp(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		apiURL:      cfg.Directory.BaseURL,
		timeout:     cfg.Directory.Timeout,
		credentials: cfg.CLI.CredentialsPath,
		out:         outputText,
		stdin:       bufio.NewReader(stdin),
		stdout:      stdout,
		stderr:      stderr,
		guard:       service.NewGuard(loginCommand, whoamiCommand),
	}
}

func (a *app) session() *service.Session {
	return service.NewSession(store.NewFileStore(a.credentials))
}

func (a *app) client() *directory.Client {
	return directory.NewClient(a.apiURL, a.timeout, logger.For("directory"))
}

func (a *app) log() zerolog.Logger {
	return logger.For("cli")
}

func (a *app) userList(cred domain.Credential, confirmer ports.Confirmer) *service.UserList {
	reporter := telemetry.Multi{telemetry.NewLogReporter(logger.For("telemetry"))}
	return service.NewUserList(a.client(), a.session(), confirmer, reporter, a.log()).WithActor(cred.UserID)
}

// authorize runs the guard for a command and turns a redirect into an error
// that names the command to run instead.
func (a *app) authorize(ctx context.Context, requiredRole string) (domain.Credential, error) {
	cred, err := a.session().Credential(ctx)
	if err != nil {
		return domain.Credential{}, err
	}
	d := a.guard.Authorize(cred, requiredRole)
	if d.Allowed {
		return cred, nil
	}
	if d.Target == a.guard.LoginRoute() {
		return cred, errors.New("not signed in; run `adminctl login` first")
	}
	return cred, errors.New("this command requires the " + requiredRole + " role; run `adminctl whoami` to see yours")
}
