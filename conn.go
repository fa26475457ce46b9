package ldapgroups

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	ldap3 "github.com/go-ldap/ldap/v3"
)

// connect dials the directory and binds with the configured
// credentials. Bind credentials are optional; an anonymous bind is
// performed without them, in which case modifications will be refused
// by the server.
func connect(c Config) (conn *ldap3.Conn, err error) {
	slog.Debug("LDAP dial.", "uri", c.ServerURI)
	err = retry.Do(
		func() error {
			conn, err = ldap3.DialURL(
				c.ServerURI,
				ldap3.DialWithTLSConfig(&tls.Config{
					InsecureSkipVerify: c.TLSReqCert != "demand",
				}),
			)
			return err
		},
		retry.RetryIf(isErrorRecoverable),
		retry.OnRetry(logRetryError),
		retry.MaxDelay(30*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrServerUnreachable, c.ServerURI, err)
	}

	if "" != c.BindDN && "" != c.BindPassword {
		slog.Debug("LDAP simple bind.", "binddn", c.BindDN)
		err = conn.Bind(c.BindDN, c.BindPassword)
	} else {
		slog.Warn("LDAP bind credentials are not set. Group modifications will most likely fail.")
		err = conn.UnauthenticatedBind("")
	}
	if err != nil {
		conn.Close()
		if ldap3.IsErrorWithCode(err, ldap3.LDAPResultInvalidCredentials) {
			return nil, fmt.Errorf("%w: binddn %q rejected by %s", ErrInvalidCredentials, c.BindDN, c.ServerURI)
		}
		if ldap3.IsErrorWithCode(err, ldap3.ErrorNetwork) {
			return nil, fmt.Errorf("%w: %s: %v", ErrServerUnreachable, c.ServerURI, err)
		}
		return nil, fmt.Errorf("bind: %w", err)
	}

	slog.Debug("Running LDAP whoami.")
	wai, err := conn.WhoAmI(nil)
	if err != nil {
		// Not all servers implement the extended operation. The bind
		// already succeeded, keep the connection.
		slog.Debug("LDAP whoami failed.", "err", err)
		return conn, nil
	}
	slog.Info("Connected to LDAP directory.", "uri", c.ServerURI, "authzid", wai.AuthzID)
	return conn, nil
}

// Implements retry.RetryIfFunc
func isErrorRecoverable(err error) bool {
	ldapErr, ok := err.(*ldap3.Error)
	if !ok {
		return true
	}
	_, ok = ldapErr.Err.(*tls.CertificateVerificationError)
	// Retrying don't fix bad certificate
	return !ok
}

// Implements retry.OnRetryFunc
func logRetryError(n uint, err error) {
	slog.Debug("Retrying.", "err", err.Error(), "attempt", n)
}
