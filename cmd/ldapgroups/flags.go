package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/lithammer/dedent"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func init() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [OPTIONS] COMMAND [ARG]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Stderr.Write([]byte(dedent.Dedent(`

		Commands:
		  attributes           Show the attributes of the group.
		  members              List member records as JSON.
		  export               Write member records to a JSON file named after the group.
		  children             List child groups and organizational units.
		  descendants          List the whole subtree below the group.
		  parent               Show the parent entry DN.
		  add-member NAME      Add a user to the group.
		  remove-member NAME   Remove a user from the group.
		  add-child NAME       Add a child group to the group.
		  remove-child NAME    Remove a child group from the group.

		Connection options fall back to LDAPGROUPS_* environment variables,
		then to ldaprc files as described in ldap.conf(5).
		`)))
	}
}

func setupFlags() (*koanf.Koanf, error) {
	pflag.StringP("config", "c", "", "Path to YAML configuration file.")
	pflag.StringP("group", "g", "", "Distinguished name of the target group.")
	pflag.String("server", "", "LDAP server URI.")
	pflag.String("base-dn", "", "Base DN of searches.")
	pflag.String("bind-dn", "", "Bind DN. Password read from LDAPGROUPS_BIND_PASSWORD.")
	pflag.Uint32("page-size", 500, "Page size of member searches.")
	pflag.StringP("out", "o", "", "Output path for export. Derived from the group name if empty.")
	pflag.Bool("color", defaultColor(), "Force color output.")
	pflag.CountP("quiet", "q", "Decrease log verbosity.")
	pflag.CountP("verbose", "v", "Increase log verbosity.")
	pflag.BoolP("help", "?", false, "Show this help message and exit.")
	pflag.BoolP("version", "V", false, "Show version and exit.")
	pflag.Parse()

	k := koanf.New(".")
	err := k.Load(posflag.Provider(pflag.CommandLine, k.Delim(), k), nil)
	return k, err
}

func defaultColor() bool {
	plain := os.Getenv("NO_COLOR")
	if plain != "" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}

// controller holds flags/env values controlling the execution of
// ldapgroups.
type controller struct {
	Config   string
	Group    string
	Server   string
	BaseDN   string `mapstructure:"base-dn"`
	BindDN   string `mapstructure:"bind-dn"`
	PageSize uint32 `mapstructure:"page-size"`
	Out      string
	Color    bool
	Quiet    int
	Verbose  int
	LogLevel slog.Level
}

var levels = []slog.Level{
	slog.LevelDebug,
	slog.LevelInfo,
	slog.LevelWarn,
	slog.LevelError,
}

func unmarshalController(k *koanf.Koanf) (c controller, err error) {
	err = k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "mapstructure"})
	// Default log level is INFO, which index is 1.
	levelIndex := 1 - k.Int("verbose") + k.Int("quiet")
	levelIndex = int(math.Max(0, float64(levelIndex)))
	levelIndex = int(math.Min(float64(levelIndex), float64(len(levels)-1)))
	c.LogLevel = levels[levelIndex]
	return c, err
}
