package db

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
)

// Options describes how to reach PostgreSQL. The pool and the migrator
// share it so both connect the same way.
type Options struct {
	URL           string
	CACertPath    string // PEM bundle trusted for sslmode=verify-ca / verify-full
	TLSServerName string // overrides the host name checked against the certificate
	MaxConns      int32
	MinConns      int32
}

// verifiesServer reports whether the URL asks for a verified TLS connection
func verifiesServer(databaseURL string) bool {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return false
	}
	switch u.Query().Get("sslmode") {
	case "verify-ca", "verify-full":
		return true
	}
	return false
}

// tlsConfig trusts the CA bundle from opts. It returns nil when the URL does
// not ask for verification or no bundle is configured, leaving pgx defaults.
func (o Options) tlsConfig() (*tls.Config, error) {
	if o.CACertPath == "" || !verifiesServer(o.URL) {
		return nil, nil
	}

	pem, err := os.ReadFile(o.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate from %s: %w", o.CACertPath, err)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", o.CACertPath)
	}

	return &tls.Config{
		RootCAs:    roots,
		ServerName: o.TLSServerName,
		MinVersion: tls.VersionTLS12,
	}, nil
}
