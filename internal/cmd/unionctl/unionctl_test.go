package unionctl

import (
	"flag"
	"reflect"
	"testing"
)

func lookupFrom(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("unionctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, lookupFrom(nil))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.APIURL != "" {
		t.Fatalf("APIURL = %q, want empty (backend env config applies later)", cfg.APIURL)
	}
	if cfg.Timeout != 0 {
		t.Fatalf("Timeout = %v, want 0", cfg.Timeout)
	}
	if cfg.PrefsDB != "unionctl.db" {
		t.Fatalf("PrefsDB = %q", cfg.PrefsDB)
	}
	if cfg.Command != "" {
		t.Fatalf("Command = %q, want empty", cfg.Command)
	}
}

func TestParseConfigEnvFallback(t *testing.T) {
	fs := flag.NewFlagSet("unionctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, lookupFrom(map[string]string{
		"UNION_PREFS_DB": "/tmp/prefs.db",
		"UNION_LOCALE":   "fr-CA",
		"UNION_EMAIL":    "student@usstm.ca",
	}))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PrefsDB != "/tmp/prefs.db" {
		t.Fatalf("PrefsDB = %q", cfg.PrefsDB)
	}
	if cfg.Locale != "fr-CA" {
		t.Fatalf("Locale = %q", cfg.Locale)
	}
	if cfg.Email != "student@usstm.ca" {
		t.Fatalf("Email = %q", cfg.Email)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	fs := flag.NewFlagSet("unionctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs,
		[]string{"-api-url", "http://localhost:9000", "-locale", "en-CA"},
		lookupFrom(map[string]string{"UNION_LOCALE": "fr-CA"}))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.APIURL != "http://localhost:9000" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Locale != "en-CA" {
		t.Fatalf("Locale = %q", cfg.Locale)
	}
}

func TestParseConfigSubcommandAndArgs(t *testing.T) {
	fs := flag.NewFlagSet("unionctl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-search", "pizza", "prefs", "set", "theme", "dark"}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Command != "prefs" {
		t.Fatalf("Command = %q, want prefs", cfg.Command)
	}
	if want := []string{"set", "theme", "dark"}; !reflect.DeepEqual(cfg.Args, want) {
		t.Fatalf("Args = %v, want %v", cfg.Args, want)
	}
	if cfg.Search != "pizza" {
		t.Fatalf("Search = %q", cfg.Search)
	}
}

func TestSplitStatuses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "  ", want: nil},
		{name: "single", input: "paid", want: []string{"PAID"}},
		{name: "multiple with spaces", input: "paid, rejected", want: []string{"PAID", "REJECTED"}},
		{name: "trailing comma", input: "confirmed,", want: []string{"CONFIRMED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitStatuses(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitStatuses(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
