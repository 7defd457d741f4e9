package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const (
	opLoad       = "load"
	opChangeRole = "change_role"
	opDelete     = "delete"
)

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ListSnapshot is a copy of the list state at one point in time.
type ListSnapshot struct {
	Items   []domain.UserRecord
	Loading bool
}

// ActionError is the combined result of a mutate-then-reload action. Either
// step may have failed; the reload is attempted regardless of the mutation.
type ActionError struct {
	Op        string
	ID        string
	MutateErr error
	ReloadErr error
}

func (e *ActionError) Error() string {
	var parts []string
	if e.MutateErr != nil {
		parts = append(parts, e.MutateErr.Error())
	}
	if e.ReloadErr != nil {
		parts = append(parts, "reload: "+e.ReloadErr.Error())
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.ID, strings.Join(parts, "; "))
}

func (e *ActionError) Unwrap() []error {
	var errs []error
	if e.MutateErr != nil {
		errs = append(errs, e.MutateErr)
	}
	if e.ReloadErr != nil {
		errs = append(errs, e.ReloadErr)
	}
	return errs
}

// UserList keeps an in-memory copy of the directory's users and refreshes it
// in full after every mutation. Concurrent actions are not reconciled: the
// reload that completes last determines the visible state.
type UserList struct {
	directory ports.UserDirectory
	tokens    TokenSource
	confirmer ports.Confirmer
	reporter  ports.FailureReporter
	log       zerolog.Logger
	actor     string

	mu       sync.Mutex
	items    []domain.UserRecord
	inflight int
	closed   bool
}

func NewUserList(
	directory ports.UserDirectory,
	tokens TokenSource,
	confirmer ports.Confirmer,
	reporter ports.FailureReporter,
	log zerolog.Logger,
) *UserList {
	return &UserList{
		directory: directory,
		tokens:    tokens,
		confirmer: confirmer,
		reporter:  reporter,
		log:       log,
	}
}

// WithActor tags failure reports with the signed-in administrator's id.
func (l *UserList) WithActor(userID string) *UserList {
	l.actor = userID
	return l
}

// Snapshot returns a copy of the current state.
func (l *UserList) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]domain.UserRecord, len(l.items))
	copy(items, l.items)
	return ListSnapshot{Items: items, Loading: l.inflight > 0}
}

// Close tears the list down. Responses that arrive afterwards are dropped.
func (l *UserList) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// Load fetches the full user set. On failure the previous snapshot stays in
// place and the failure goes to the reporter; the error is returned as well.
func (l *UserList) Load(ctx context.Context) ([]domain.UserRecord, error) {
	if !l.begin() {
		return nil, nil
	}

	users, err := l.fetch(ctx)

	l.mu.Lock()
	l.inflight--
	closed := l.closed
	if err == nil && !closed {
		l.items = users
	}
	l.mu.Unlock()

	if err != nil {
		if !closed {
			l.report(ctx, opLoad, "", err)
		}
		return nil, err
	}

	l.log.Debug().Int("count", len(users)).Msg("user list loaded")
	out := make([]domain.UserRecord, len(users))
	copy(out, users)
	return out, nil
}

// ChangeRole toggles the user's role and then reloads, whatever the toggle's
// outcome, so the view reflects the server's derivation of the new role.
func (l *UserList) ChangeRole(ctx context.Context, id string) error {
	mutateErr := l.mutate(ctx, opChangeRole, id, l.directory.ToggleRole)
	_, reloadErr := l.Load(ctx)
	return combine(opChangeRole, id, mutateErr, reloadErr)
}

// Delete asks for confirmation and, when given, deletes the user and reloads.
// A declined confirmation sends nothing and returns domain.ErrNotConfirmed.
func (l *UserList) Delete(ctx context.Context, id string) error {
	if l.confirmer == nil {
		return domain.ErrNotConfirmed
	}
	ok, err := l.confirmer.Confirm(ctx, fmt.Sprintf("Delete user %s?", id))
	if err != nil {
		return fmt.Errorf("confirm delete %s: %w", id, err)
	}
	if !ok {
		return domain.ErrNotConfirmed
	}

	mutateErr := l.mutate(ctx, opDelete, id, l.directory.DeleteUser)
	_, reloadErr := l.Load(ctx)
	return combine(opDelete, id, mutateErr, reloadErr)
}

func (l *UserList) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.inflight++
	return true
}

func (l *UserList) fetch(ctx context.Context) ([]domain.UserRecord, error) {
	token, err := l.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return l.directory.ListUsers(ctx, token)
}

func (l *UserList) mutate(ctx context.Context, op, id string, call func(context.Context, string, string) error) error {
	token, err := l.tokens.Token(ctx)
	if err == nil {
		err = call(ctx, token, id)
	}
	if err != nil {
		l.report(ctx, op, id, err)
		return err
	}
	l.log.Info().Str("op", op).Str("user_id", id).Msg("directory mutation applied")
	return nil
}

func (l *UserList) report(ctx context.Context, op, target string, err error) {
	if l.reporter == nil {
		return
	}
	l.reporter.Report(ctx, domain.FailureReport{
		Op:     op,
		Target: target,
		Actor:  l.actor,
		Err:    err,
		At:     time.Now().UTC(),
	})
}

func combine(op, id string, mutateErr, reloadErr error) error {
	if mutateErr == nil && reloadErr == nil {
		return nil
	}
	return &ActionError{Op: op, ID: id, MutateErr: mutateErr, ReloadErr: reloadErr}
}

// IsDeclined reports whether err comes from a declined confirmation.
func IsDeclined(err error) bool {
	return errors.Is(err, domain.ErrNotConfirmed)
}
