// Implements ldap.conf(5) resolution for connection options.
package ldapgroups

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

var (
	rcOnce sync.Once
	rc     *koanf.Koanf
)

// loadRC resolves URI, BINDDN, PASSWORD, BASE and TLS_REQCERT the way
// libldap does: defaults, then LDAP* environment, then ldaprc files.
// Resolved once per process; explicit Config fields always win.
// cf. https://git.openldap.org/openldap/openldap/-/blob/bf01750381726db3052d94514eec4048c90a616a/libraries/libldap/init.c#L640
func loadRC() *koanf.Koanf {
	rcOnce.Do(func() {
		rc = koanf.New("_")

		_, ok := os.LookupEnv("LDAPNOINIT")
		if ok {
			slog.Debug("Skip LDAP initialization.")
			return
		}

		_ = rc.Load(confmap.Provider(map[string]any{
			"RC":          "ldaprc",
			"TLS_REQCERT": "try",
		}, rc.Delim()), nil)

		_ = rc.Load(env.Provider("LDAP", rc.Delim(), func(key string) string {
			return strings.TrimPrefix(key, "LDAP")
		}), nil)

		home, _ := os.UserHomeDir()
		files := []string{
			"/etc/ldap/ldap.conf",
			filepath.Join(home, "ldaprc"),
			filepath.Join(home, ".ldaprc"),
			"ldaprc", // search in CWD
			// Read CONF and RC only from env, before above files are effectively read.
			rc.String("CONF"),
			filepath.Join(home, rc.String("RC")),
			filepath.Join(home, fmt.Sprintf(".%s", rc.String("RC"))),
			rc.String("RC"), // Search in CWD.
		}
		for _, candidate := range files {
			if candidate == "" {
				continue
			}

			err := rc.Load(newLooseFileProvider(candidate), rcParser{rc.Delim()})
			if err != nil {
				slog.Warn("Bad LDAP configuration file.", "path", candidate, "err", err)
			}
		}
	})
	return rc
}

// looseFileProvider reads a file if it exists.
type looseFileProvider struct {
	path string
}

func newLooseFileProvider(path string) koanf.Provider {
	if !filepath.IsAbs(path) {
		path, _ = filepath.Abs(path)
	}
	return looseFileProvider{path: path}
}

func (p looseFileProvider) ReadBytes() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	slog.Debug("Found LDAP configuration file.", "path", p.path, "err", err)
	return data, err
}

func (looseFileProvider) Read() (map[string]any, error) {
	panic("not implemented")
}

// rcParser returns ldaprc as plain map for koanf.
type rcParser struct {
	delim string
}

func (p rcParser) Unmarshal(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	re := regexp.MustCompile(`\s+`)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(line)
		if "" == line {
			continue
		}
		fields := re.Split(line, 2)
		if 2 != len(fields) {
			continue
		}
		out[strings.ToUpper(fields[0])] = fields[1]
	}
	return maps.Unflatten(out, p.delim), nil
}

func (rcParser) Marshal(map[string]any) ([]byte, error) {
	panic("not implemented")
}
