package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevCertificates(t *testing.T) {
	certs, err := NewDevCertificates([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	block, _ := pem.Decode(certs.Server.CertPEM)
	require.NotNil(t, block)
	server, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, server.DNSNames)
	require.Len(t, server.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", server.IPAddresses[0].String())

	roots := x509.NewCertPool()
	require.True(t, roots.AppendCertsFromPEM(certs.CA.CertPEM))
	_, err = server.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots})
	assert.NoError(t, err, "server certificate chains to the CA")

	_, err = tls.X509KeyPair(certs.Server.CertPEM, certs.Server.KeyPEM)
	assert.NoError(t, err)

	_, err = NewDevCertificates(nil, time.Hour)
	assert.Error(t, err)
}

func TestWriteDirAndLoad(t *testing.T) {
	dir := t.TempDir()
	certs, err := NewDevCertificates([]string{"localhost"}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, certs.WriteDir(dir))

	creds, err := ServerTLSConfig(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"), "")
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	_, err = ServerTLSConfig(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"), filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)

	_, err = ClientTLSConfig(filepath.Join(dir, "ca.pem"), "localhost")
	require.NoError(t, err)
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := ServerTLSConfig(filepath.Join(dir, "missing.pem"), filepath.Join(dir, "missing-key.pem"), "")
	assert.Error(t, err)

	certs, err := NewDevCertificates([]string{"localhost"}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, certs.WriteDir(dir))
	_, err = ClientTLSConfig(filepath.Join(dir, "server-key.pem"), "")
	assert.Error(t, err, "a private key is not a CA certificate")
}
