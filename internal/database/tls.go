// ABOUTME: TLS configuration built from a CA certificate file.
// ABOUTME: Accepts PEM (one or more CERTIFICATE blocks) or DER encodings.
package database

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ParseCertificates decodes certificates from PEM or DER bytes. The format
// is detected from the content.
func ParseCertificates(data []byte) ([]*x509.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("certificate file is empty")
	}

	if !bytes.Contains(data, []byte("-----BEGIN")) {
		certs, err := x509.ParseCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("parse DER certificate: %w", err)
		}
		return certs, nil
	}

	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PEM certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("no CERTIFICATE blocks found in PEM data")
	}
	return certs, nil
}

// LoadCertPool reads a certificate file into a pool of trusted roots.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	certs, err := ParseCertificates(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}

// NewTLSConfig trusts the certificates in certPath. The server chain is
// always verified; the hostname only when verifyIdentity is set.
func NewTLSConfig(certPath, host string, verifyIdentity bool) (*tls.Config, error) {
	pool, err := LoadCertPool(certPath)
	if err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}
	if verifyIdentity {
		cfg.ServerName = host
		return cfg, nil
	}

	// Skip the built-in check (which always includes the hostname) and
	// verify the chain ourselves.
	cfg.InsecureSkipVerify = true
	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		return verifyChain(cs.PeerCertificates, pool)
	}
	return cfg, nil
}

func verifyChain(peers []*x509.Certificate, roots *x509.CertPool) error {
	if len(peers) == 0 {
		return errors.New("tls: server presented no certificates")
	}
	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: x509.NewCertPool(),
	}
	for _, c := range peers[1:] {
		opts.Intermediates.AddCert(c)
	}
	if _, err := peers[0].Verify(opts); err != nil {
		return fmt.Errorf("tls: verify server certificate: %w", err)
	}
	return nil
}
