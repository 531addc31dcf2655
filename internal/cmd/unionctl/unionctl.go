// Package unionctl implements the unionctl command: a terminal client for
// the union backend built on the session controller and the authorization
// predicates.
package unionctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/usstm/unionclient/internal/api"
	"github.com/usstm/unionclient/internal/authz"
	"github.com/usstm/unionclient/internal/listing"
	"github.com/usstm/unionclient/internal/platform/config"
	apperrors "github.com/usstm/unionclient/internal/platform/errors"
	"github.com/usstm/unionclient/internal/platform/otel"
	"github.com/usstm/unionclient/internal/prefs"
	prefssqlite "github.com/usstm/unionclient/internal/prefs/sqlite"
	"github.com/usstm/unionclient/internal/session"
)

// Config holds unionctl command configuration.
type Config struct {
	APIURL   string
	Timeout  time.Duration
	PrefsDB  string
	Locale   string
	Email    string
	Password string
	Remember bool
	Search   string
	Statuses string
	Asc      bool

	Command string
	Args    []string

	// Out receives command output. Nil selects os.Stdout.
	Out io.Writer
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config. The first non-flag argument is the
// subcommand; the rest are its arguments.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		PrefsDB:  envOrDefault(lookup, []string{"UNION_PREFS_DB"}, "unionctl.db"),
		Locale:   envOrDefault(lookup, []string{"UNION_LOCALE"}, ""),
		Email:    envOrDefault(lookup, []string{"UNION_EMAIL"}, ""),
		Password: envOrDefault(lookup, []string{"UNION_PASSWORD"}, ""),
	}

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "The union backend base URL (overrides UNION_API_URL)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout (overrides UNION_API_TIMEOUT)")
	fs.StringVar(&cfg.PrefsDB, "prefs-db", cfg.PrefsDB, "Path to the local preferences database")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Message locale (en-CA or fr-CA)")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "Login email")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Login password")
	fs.BoolVar(&cfg.Remember, "remember", cfg.Remember, "Request a long-lived session")
	fs.StringVar(&cfg.Search, "search", cfg.Search, "Free-text filter for expense listings")
	fs.StringVar(&cfg.Statuses, "status", cfg.Statuses, "Comma-separated status filter for expense listings")
	fs.BoolVar(&cfg.Asc, "asc", cfg.Asc, "Sort expense listings oldest first")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		cfg.Command = rest[0]
		cfg.Args = rest[1:]
	}
	return cfg, nil
}

// Run executes the selected subcommand.
func Run(ctx context.Context, cfg Config) error {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	shutdown, err := otel.Setup(ctx, "unionctl")
	if err != nil {
		log.Printf("otel setup: %v", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("otel shutdown: %v", err)
			}
		}()
	}

	locale := resolveLocale(ctx, cfg)

	switch cfg.Command {
	case "login":
		return runLogin(ctx, cfg, out, locale)
	case "logout":
		return runLogout(ctx, cfg, out)
	case "whoami":
		return runWhoami(ctx, cfg, out, locale)
	case "expenses":
		return runExpenses(ctx, cfg, out, locale)
	case "prefs":
		return runPrefs(ctx, cfg, out)
	case "":
		return fmt.Errorf("missing subcommand: want login, logout, whoami, expenses, or prefs")
	default:
		return fmt.Errorf("unknown subcommand %q", cfg.Command)
	}
}

func newController(cfg Config) (*api.Client, *session.Controller, error) {
	var apiCfg api.Config
	if err := config.ParseEnv(&apiCfg); err != nil {
		return nil, nil, err
	}
	if cfg.APIURL != "" {
		apiCfg.BaseURL = cfg.APIURL
	}
	if cfg.Timeout > 0 {
		apiCfg.Timeout = cfg.Timeout
	}

	client, err := api.New(apiCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create api client: %w", err)
	}
	return client, session.NewController(client, nil), nil
}

func runLogin(ctx context.Context, cfg Config, out io.Writer, locale string) error {
	if strings.TrimSpace(cfg.Email) == "" || cfg.Password == "" {
		return fmt.Errorf("login requires -email and -password (or UNION_EMAIL / UNION_PASSWORD)")
	}

	_, controller, err := newController(cfg)
	if err != nil {
		return err
	}

	if !controller.Login(ctx, cfg.Email, cfg.Password, cfg.Remember) {
		return userFacing(controller.Snapshot().Err, locale)
	}

	snap, err := awaitProfile(ctx, controller)
	if err != nil {
		return err
	}
	if snap.Err != nil {
		return userFacing(snap.Err, locale)
	}
	fmt.Fprintf(out, "Logged in as %s %s <%s>\n", snap.Student.FirstName, snap.Student.LastName, snap.Student.Email)
	return nil
}

func runLogout(ctx context.Context, cfg Config, out io.Writer) error {
	_, controller, err := newController(cfg)
	if err != nil {
		return err
	}
	controller.Logout(ctx)

	if err := controller.Snapshot().Err; err != nil {
		log.Printf("backend logout failed, local session cleared anyway: %v", err)
	}
	fmt.Fprintln(out, "Logged out")
	return nil
}

func runWhoami(ctx context.Context, cfg Config, out io.Writer, locale string) error {
	_, controller, err := newController(cfg)
	if err != nil {
		return err
	}

	snap, err := awaitProfile(ctx, controller)
	if err != nil {
		return err
	}
	if snap.Err != nil {
		return userFacing(snap.Err, locale)
	}
	if snap.Student == nil {
		return fmt.Errorf("not logged in")
	}

	fmt.Fprintf(out, "%s %s <%s>\n", snap.Student.FirstName, snap.Student.LastName, snap.Student.Email)
	fmt.Fprintf(out, "Role: %s\n", snap.Role)
	for _, committee := range snap.Committees {
		fmt.Fprintf(out, "Committee: %s\n", committee.Name)
	}
	if authz.CanViewExpenses(snap.RGBank) {
		fmt.Fprintln(out, "Expense access: granted")
	}
	return nil
}

func runExpenses(ctx context.Context, cfg Config, out io.Writer, locale string) error {
	client, controller, err := newController(cfg)
	if err != nil {
		return err
	}

	snap, err := awaitProfile(ctx, controller)
	if err != nil {
		return err
	}
	if snap.Err != nil {
		return userFacing(snap.Err, locale)
	}
	if !authz.CanViewExpenses(snap.RGBank) {
		return fmt.Errorf("current session has no expense access")
	}

	items, err := client.Expenses(ctx)
	if err != nil {
		return userFacing(err, locale)
	}

	items = listing.FilterItems(items, cfg.Search, splitStatuses(cfg.Statuses))
	items = listing.SortByCreatedAt(items, !cfg.Asc, false)

	for _, item := range items {
		marker := " "
		if item.Committee != nil && authz.CanChangeExpense(snap.Committees, item.Committee, snap.RGBank) {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %8.2f  %s\n", marker, item.Status, float64(item.Amount)/100, item.Title)
	}
	fmt.Fprintf(out, "%d item(s)\n", len(items))
	return nil
}

func runPrefs(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := prefssqlite.Open(cfg.PrefsDB, nil)
	if err != nil {
		return fmt.Errorf("open preferences store: %w", err)
	}
	defer store.Close()

	if len(cfg.Args) == 0 || cfg.Args[0] == "get" {
		current, err := store.Get(ctx)
		if err != nil {
			if apperrors.CodeOf(err) != apperrors.CodeNotFound {
				return err
			}
			current = prefs.Defaults()
		}
		fmt.Fprintf(out, "locale: %s\ntheme: %s\n", current.Locale, current.Theme)
		return nil
	}

	if cfg.Args[0] != "set" || len(cfg.Args) != 3 {
		return fmt.Errorf("usage: prefs [get | set <locale|theme> <value>]")
	}

	current, err := store.Get(ctx)
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeNotFound {
			return err
		}
		current = prefs.Defaults()
	}

	key, value := cfg.Args[1], cfg.Args[2]
	switch key {
	case "locale":
		current.Locale = value
	case "theme":
		current.Theme = value
	default:
		return apperrors.WithMetadata(apperrors.CodePrefsUnknownKey,
			fmt.Sprintf("unknown preference key %q", key),
			map[string]string{"key": key})
	}

	current = prefs.Normalize(current)
	if err := prefs.Validate(current); err != nil {
		return err
	}
	if err := store.Put(ctx, current); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s set to %s\n", key, value)
	return nil
}

// awaitProfile runs the refresh loop until the first fetch settles, then
// stops the loop and returns the resulting snapshot.
func awaitProfile(ctx context.Context, controller *session.Controller) (session.Session, error) {
	updates, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	cancel, done := controller.Start(session.DefaultRefreshInterval)
	defer func() {
		cancel()
		<-done
	}()

	for {
		snap := controller.Snapshot()
		if !snap.Loading && (snap.Student != nil || snap.Err != nil) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return session.Session{}, ctx.Err()
		case <-updates:
		}
	}
}

// userFacing renders the localized message for domain errors; other errors
// pass through unchanged.
func userFacing(err error, locale string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return fmt.Errorf("%s", domainErr.UserMessage(locale))
	}
	return err
}

func resolveLocale(ctx context.Context, cfg Config) string {
	if cfg.Locale != "" {
		return cfg.Locale
	}
	store, err := prefssqlite.Open(cfg.PrefsDB, nil)
	if err != nil {
		return prefs.Defaults().Locale
	}
	defer store.Close()

	saved, err := store.Get(ctx)
	if err != nil {
		return prefs.Defaults().Locale
	}
	return saved.Locale
}

func splitStatuses(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	statuses := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToUpper(strings.TrimSpace(part)); trimmed != "" {
			statuses = append(statuses, trimmed)
		}
	}
	return statuses
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
