package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/adtools/ldapgroups"
	"github.com/adtools/ldapgroups/internal"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()
	// Bootstrap logging first to log in setup.
	internal.SetLoggingHandler(slog.LevelInfo, defaultColor())
	k, err := setupFlags()
	if err == nil {
		if k.Bool("help") {
			pflag.Usage()
			return
		} else if k.Bool("version") {
			showVersion()
			return
		}
		err = run(k)
	}
	if err != nil {
		slog.Error("Fatal error.", "err", err)
		if internal.CurrentLevel() > slog.LevelDebug {
			slog.Error("Run ldapgroups with --verbose to get more informations.")
		}
		os.Exit(1)
	}
}

func run(k *koanf.Koanf) error {
	c, err := unmarshalController(k)
	if err != nil {
		return err
	}
	internal.SetLoggingHandler(c.LogLevel, c.Color)
	slog.Info("Starting ldapgroups",
		"version", internal.Version,
		"runtime", runtime.Version(),
		"pid", os.Getpid(),
	)

	if "" == c.Group {
		return errors.New("missing --group DN")
	}
	command := pflag.Arg(0)
	if "" == command {
		return errors.New("missing command, see --help")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	group, err := ldapgroups.New(c.Group, cfg)
	if err != nil {
		return err
	}
	defer group.Close()

	switch command {
	case "attributes":
		return showAttributes(group)
	case "members":
		return listMembers(group, c.PageSize)
	case "export":
		return exportMembers(group, c)
	case "children":
		return listHandles(group.Children)
	case "descendants":
		return listHandles(group.Descendants)
	case "parent":
		parent, err := group.Parent()
		if err != nil {
			return err
		}
		if parent != group {
			defer parent.Close()
		}
		fmt.Println(parent.DN)
		return nil
	case "add-member":
		return group.AddMember(commandArg(command))
	case "remove-member":
		return group.RemoveMember(commandArg(command))
	case "add-child":
		return group.AddChild(commandArg(command))
	case "remove-child":
		return group.RemoveChild(commandArg(command))
	}
	return fmt.Errorf("unknown command: %s", command)
}

func commandArg(command string) string {
	arg := pflag.Arg(1)
	if "" == arg {
		slog.Error("Missing command argument.", "command", command)
		os.Exit(1)
	}
	return arg
}

func loadConfig(c controller) (cfg ldapgroups.Config, err error) {
	path := ldapgroups.FindFile(c.Config)
	if "" != path {
		slog.Info("Using YAML configuration file.", "path", path)
		cfg, err = ldapgroups.LoadFile(path)
	} else {
		cfg, err = ldapgroups.FromEnv()
	}
	if err != nil {
		return
	}

	// Flags override file and environment.
	if "" != c.Server {
		cfg.ServerURI = c.Server
	}
	if "" != c.BaseDN {
		cfg.BaseDN = c.BaseDN
	}
	if "" != c.BindDN {
		cfg.BindDN = c.BindDN
	}
	return
}

func showAttributes(group *ldapgroups.ADGroup) error {
	attributes, err := group.GetAttributes()
	if err != nil {
		return err
	}
	return dumpJSON(os.Stdout, attributes)
}

func listMembers(group *ldapgroups.ADGroup, pageSize uint32) error {
	records, err := group.GetMemberInfo(pageSize)
	if err != nil {
		return err
	}
	return dumpJSON(os.Stdout, records)
}

func exportMembers(group *ldapgroups.ADGroup, c controller) error {
	records, err := group.GetMemberInfo(c.PageSize)
	if err != nil {
		return err
	}
	path := c.Out
	if "" == path {
		name, ok, err := group.GetAttribute("cn")
		if err != nil {
			return err
		}
		if !ok {
			name = group.DN
		}
		path = slug.Make(name) + "-members.json"
	}
	fo, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fo.Close()
	err = dumpJSON(fo, records)
	if err != nil {
		return err
	}
	slog.Info("Wrote member export.", "path", path, "members", len(records))
	return nil
}

func listHandles(search func() ([]*ldapgroups.ADGroup, error)) error {
	groups, err := search()
	if err != nil {
		return err
	}
	for _, group := range groups {
		fmt.Println(group.DN)
		_ = group.Close()
	}
	return nil
}

func dumpJSON(fo *os.File, v any) error {
	e := json.NewEncoder(fo)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func showVersion() {
	fmt.Printf("ldapgroups %s\n", internal.Version)

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	modmap := make(map[string]string)
	for _, mod := range bi.Deps {
		modmap[mod.Path] = mod.Version
	}
	modules := []string{
		"github.com/go-ldap/ldap/v3",
		"github.com/knadh/koanf/v2",
		"gopkg.in/yaml.v3",
	}
	for _, mod := range modules {
		fmt.Printf("%s %s\n", mod, modmap[mod])
	}

	fmt.Printf("%s %s %s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
