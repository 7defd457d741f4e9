package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/99minutos/admin-console/internal/core/domain"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func validOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (text|json)", format)
	}
}

func printUsers(w io.Writer, format string, users []domain.UserRecord) error {
	if format == outputJSON {
		if users == nil {
			users = []domain.UserRecord{}
		}
		return printJSON(w, users)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
	}
	return tw.Flush()
}

type whoami struct {
	SignedIn bool   `json:"signedIn"`
	UserID   string `json:"userId,omitempty"`
	Role     string `json:"role,omitempty"`
}

func printWhoami(w io.Writer, format string, cred domain.Credential) error {
	info := whoami{SignedIn: cred.Present, UserID: cred.UserID, Role: cred.Role}
	if format == outputJSON {
		return printJSON(w, info)
	}
	if !info.SignedIn {
		_, err := fmt.Fprintln(w, "not signed in")
		return err
	}
	user := info.UserID
	if user == "" {
		user = "(unknown id)"
	}
	role := info.Role
	if role == "" {
		role = "(none)"
	}
	_, err := fmt.Fprintf(w, "user %s, role %s\n", user, role)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
