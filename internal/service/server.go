package service

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// ServerOptions configures the HTTP listener.
type ServerOptions struct {
	Addr        string
	ReadTimeout time.Duration
	// TLS is enabled when CertFile is set.
	CertFile   string
	KeyFile    string
	ClientAuth bool
	// TrustStore is a PEM bundle of CAs accepted for client certificates.
	TrustStore string
}

type Server struct {
	httpServer *http.Server
	opts       ServerOptions
	logger     *zap.Logger
}

func NewServer(opts ServerOptions, handler http.Handler, logger *zap.Logger) (*Server, error) {
	s := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
	}
	if opts.CertFile != "" {
		tlsCfg, err := buildTLSConfig(opts)
		if err != nil {
			return nil, err
		}
		s.TLSConfig = tlsCfg
	}
	return &Server{httpServer: s, opts: opts, logger: logger}, nil
}

func buildTLSConfig(opts ServerOptions) (*tls.Config, error) {
	if opts.KeyFile == "" {
		return nil, errors.New("ssl enabled but no key file configured")
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if !opts.ClientAuth {
		return cfg, nil
	}
	if opts.TrustStore == "" {
		return nil, errors.New("ssl client auth enabled but no truststore configured")
	}
	pem, err := os.ReadFile(opts.TrustStore)
	if err != nil {
		return nil, fmt.Errorf("failed to read truststore: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in truststore %s", opts.TrustStore)
	}
	cfg.ClientCAs = pool
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	return cfg, nil
}

// TLS reports whether the server terminates TLS.
func (s *Server) TLS() bool { return s.httpServer.TLSConfig != nil }

func (s *Server) Start() error {
	s.logger.Info("Starting submarine HTTP server",
		zap.String("addr", s.httpServer.Addr),
		zap.Bool("tls", s.TLS()),
	)
	if s.TLS() {
		return s.httpServer.ListenAndServeTLS(s.opts.CertFile, s.opts.KeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting submarine HTTP server", zap.String("addr", ln.Addr().String()))
	if s.TLS() {
		return s.httpServer.ServeTLS(ln, s.opts.CertFile, s.opts.KeyFile)
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping submarine HTTP server")
	return s.httpServer.Shutdown(ctx)
}
