package ldapgroups

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config holds the connection and lookup settings of a group handle.
// Defaulting happens once, when the handle is constructed. No setting
// is ever read from ambient state afterwards.
type Config struct {
	ServerURI         string   `mapstructure:"server_uri"`
	BaseDN            string   `mapstructure:"base_dn"`
	UserLookupAttr    string   `mapstructure:"user_lookup_attr"`
	GroupLookupAttr   string   `mapstructure:"group_lookup_attr"`
	AttrList          []string `mapstructure:"attr_list"`
	BindDN            string   `mapstructure:"bind_dn"`
	BindPassword      string   `mapstructure:"bind_password"`
	UserSearchBaseDN  string   `mapstructure:"user_search_base_dn"`
	GroupSearchBaseDN string   `mapstructure:"group_search_base_dn"`
	TLSReqCert        string   `mapstructure:"tls_reqcert"`
}

// normalize fills blanks from ldaprc and defaults, then checks
// required settings.
func (c *Config) normalize() error {
	rc := loadRC()
	if "" == c.ServerURI {
		c.ServerURI = rc.String("URI")
	}
	if "" == c.BindDN {
		c.BindDN = rc.String("BINDDN")
		if "" != c.BindDN {
			c.BindPassword = rc.String("PASSWORD")
		}
	}
	if "" == c.BaseDN {
		c.BaseDN = rc.String("BASE")
	}
	if "" == c.TLSReqCert {
		c.TLSReqCert = rc.String("TLS_REQCERT")
	}

	if "" == c.ServerURI {
		return fmt.Errorf("%w: server_uri is required", ErrImproperlyConfigured)
	}
	if "" == c.BaseDN {
		return fmt.Errorf("%w: base_dn is required", ErrImproperlyConfigured)
	}

	if "" == c.UserLookupAttr {
		c.UserLookupAttr = "sAMAccountName"
	}
	if "" == c.GroupLookupAttr {
		c.GroupLookupAttr = "name"
	}
	if nil == c.AttrList {
		c.AttrList = []string{"displayName", "sAMAccountName", "distinguishedName"}
	}
	if "" == c.UserSearchBaseDN {
		c.UserSearchBaseDN = c.BaseDN
	}
	if "" == c.GroupSearchBaseDN {
		c.GroupSearchBaseDN = c.BaseDN
	}
	if "" == c.TLSReqCert {
		c.TLSReqCert = "try"
	}
	return nil
}

// FromEnv builds a Config from LDAPGROUPS_* environment variables,
// e.g. LDAPGROUPS_SERVER_URI, LDAPGROUPS_BASE_DN, LDAPGROUPS_BIND_DN.
// LDAPGROUPS_ATTR_LIST holds a space-separated attribute list.
func FromEnv() (Config, error) {
	var c Config
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(map[string]any{
		"server_uri": "",
		"base_dn":    "",
	}, k.Delim()), nil)
	err := k.Load(env.ProviderWithValue("LDAPGROUPS_", k.Delim(), func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, "LDAPGROUPS_"))
		if "attr_list" == key {
			return key, strings.Fields(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return c, fmt.Errorf("environment: %w", err)
	}
	err = k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "mapstructure"})
	if err != nil {
		return c, fmt.Errorf("environment: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML configuration file into a Config.
func LoadFile(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	var raw map[string]any
	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c, err
	}
	err = decoder.Decode(raw)
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FindFile searches the configuration file in standard locations.
// userValue short-circuits the search.
func FindFile(userValue string) (configpath string) {
	if "" != userValue {
		return userValue
	}

	slog.Debug("Searching configuration file in standard locations.")
	home, _ := os.UserHomeDir()
	candidates := []string{
		"./ldapgroups.yml",
		"./ldapgroups.yaml",
		path.Join(home, "/.config/ldapgroups.yml"),
		path.Join(home, "/.config/ldapgroups.yaml"),
		"/etc/ldapgroups.yml",
		"/etc/ldapgroups.yaml",
	}

	for _, candidate := range candidates {
		_, err := os.Stat(candidate)
		if err == nil {
			slog.Debug("Found configuration file.", "path", candidate)
			return candidate
		}
		slog.Debug("Ignoring configuration file.", "path", candidate, "err", err)
	}

	return ""
}
