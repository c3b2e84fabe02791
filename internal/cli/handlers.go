// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/gradebook-tui/internal/api"
	"github.com/jeranaias/gradebook-tui/internal/auth"
	"github.com/jeranaias/gradebook-tui/internal/config"
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/report"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

// =============================================================================
// WIRING
// =============================================================================

// SessionDir resolves where session files live: the config override if
// set, otherwise the config directory itself.
func SessionDir(cfg *config.Config) (string, error) {
	if cfg.Session.Dir != "" {
		return cfg.Session.Dir, nil
	}
	return config.ConfigDir()
}

// OpenSession builds the hydrated session store from config.
func OpenSession(cfg *config.Config) (*session.Store, error) {
	dir, err := SessionDir(cfg)
	if err != nil {
		return nil, err
	}
	store, err := session.NewStore(dir, cfg.Session.EncryptToken)
	if err != nil {
		return nil, err
	}
	store.Hydrate()
	return store, nil
}

// NewClient builds the API client from config.
func NewClient(cfg *config.Config, store *session.Store) *api.Client {
	return api.NewClientWithConfig(store, &api.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   time.Duration(cfg.API.TimeoutSecs) * time.Second,
		RateLimit: cfg.API.RateLimit,
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleLogin signs in and stores the session.
func HandleLogin(args Args) int {
	cfg := config.Global()
	store, err := OpenSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	email := args.Email
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to read email: %v\n", err)
			return 1
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to read password: %v\n", err)
		return 1
	}

	gateway := auth.NewGateway(NewClient(cfg, store), store)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := gateway.Login(ctx, email, string(passwordBytes))
	if err != nil {
		if detail := api.Detail(err); detail != "" {
			fmt.Fprintf(os.Stderr, "login failed: %s\n", detail)
		} else {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		}
		return 1
	}

	if !args.Quiet {
		fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Role)
	}
	return 0
}

// HandleLogout drops the stored session.
func HandleLogout(args Args) int {
	store, err := OpenSession(config.Global())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if store.Clear() {
		if !args.Quiet {
			fmt.Println("Signed out.")
		}
	} else if !args.Quiet {
		fmt.Println("No active session.")
	}
	return 0
}

// HandleWhoami shows the stored account.
func HandleWhoami(args Args) int {
	store, err := OpenSession(config.Global())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	snap := store.Current()
	if !snap.Authenticated() {
		fmt.Println("Not signed in.")
		return 1
	}

	fmt.Printf("%s <%s>\n", snap.User.FullName, snap.User.Email)
	fmt.Printf("Role: %s\n", snap.User.Role)
	return 0
}

// HandleReport exports the course report to a file.
func HandleReport(args Args) int {
	cfg := config.Global()
	store, err := OpenSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	snap := store.Current()
	if !snap.Authenticated() {
		fmt.Fprintln(os.Stderr, "error: not signed in; run `gradebook login` first")
		return 1
	}
	if snap.User.Role != model.RoleTeacher {
		fmt.Fprintln(os.Stderr, "error: the course report is available to teachers only")
		return 1
	}

	client := NewClient(cfg, store)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rep, err := client.CourseReport(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "error: session expired; run `gradebook login` again")
		} else if detail := api.Detail(err); detail != "" {
			fmt.Fprintf(os.Stderr, "error: %s\n", detail)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}

	path := args.OutputPath
	if path == "" {
		if args.XLSX {
			path = report.XLSXFileName(time.Now())
		} else {
			path = report.CSVFileName(time.Now())
		}
	}

	if args.XLSX {
		err = report.ExportXLSX(path, rep)
	} else {
		err = report.ExportCSV(path, rep)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: export failed: %v\n", err)
		return 1
	}

	if !args.Quiet {
		fmt.Printf("Report written to %s (%d students)\n", path, rep.TotalStudents)
	}
	return 0
}

// HandleConfig shows or edits configuration.
func HandleConfig(args Args) int {
	cfg := config.Global()

	switch args.Subcommand {
	case "show", "":
		for _, key := range config.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("%-24s %s\n", key, value)
		}
		return 0

	case "get":
		if args.ConfigKey == "" {
			fmt.Fprintln(os.Stderr, "usage: gradebook config get <key>")
			return 1
		}
		value, err := cfg.Get(args.ConfigKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(value)
		return 0

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			fmt.Fprintln(os.Stderr, "usage: gradebook config set <key> <value>")
			return 1
		}
		if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to save config: %v\n", err)
			return 1
		}
		if !args.Quiet {
			fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args.Subcommand)
		return 1
	}
}

// HandleVersion prints version information.
func HandleVersion() int {
	PrintVersion()
	return 0
}

// HandleHelp prints usage.
func HandleHelp() int {
	PrintUsage()
	return 0
}
