// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/background"
	"github.com/bitmark-inc/docledger/fault"
)

const (
	readWriteTimeout = 30 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// Configuration - listener section of the configuration file
type Configuration struct {
	Listen      []string `gluamapper:"listen" json:"listen"`
	Certificate string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey  string   `gluamapper:"private_key" json:"private_key"`
	RateLimit   float64  `gluamapper:"rate_limit" json:"rate_limit"`
	Burst       int      `gluamapper:"burst" json:"burst"`
}

type server struct {
	log       *logger.L
	listeners []net.Listener
	handler   http.Handler
}

// NewServer - bind every listen address now so errors are reported at
// start; serving begins when the process runs
//
// a certificate and key switch all listeners to TLS
func NewServer(configuration *Configuration, log *logger.L, handler http.Handler) (background.Process, error) {
	if 0 == len(configuration.Listen) {
		log.Error("no listen addresses")
		return nil, fault.ConfigurationFailed
	}

	var tlsConfig *tls.Config
	if "" != configuration.Certificate {
		certificate, err := tls.LoadX509KeyPair(configuration.Certificate, configuration.PrivateKey)
		if nil != err {
			log.Errorf("load certificate: %q  error: %s", configuration.Certificate, err)
			return nil, err
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{certificate},
			MinVersion:   tls.VersionTLS12,
			NextProtos:   []string{"http/1.1"},
		}
	}

	s := &server{
		log:     log,
		handler: handler,
	}

	for _, listen := range configuration.Listen {
		if strings.HasPrefix(listen, "*:") {
			// change "*:PORT" to "[::]:PORT"
			// on the assumption that this will listen on tcp4 and tcp6
			listen = "[::]" + listen[1:]
		}
		ln, err := net.Listen("tcp", listen)
		if nil != err {
			s.close()
			log.Errorf("listen on: %q  error: %s", listen, err)
			return nil, err
		}
		if nil != tlsConfig {
			ln = tls.NewListener(ln, tlsConfig)
		}
		log.Infof("listening on: %q  tls: %t", ln.Addr(), nil != tlsConfig)
		s.listeners = append(s.listeners, ln)
	}

	return s, nil
}

func (s *server) close() {
	for _, ln := range s.listeners {
		ln.Close()
	}
}

// Run - background processing interface
func (s *server) Run(_ interface{}, shutdown <-chan struct{}) {
	servers := make([]*http.Server, 0, len(s.listeners))
	for _, ln := range s.listeners {
		srv := &http.Server{
			Handler:        s.handler,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		servers = append(servers, srv)

		go func(srv *http.Server, ln net.Listener) {
			err := srv.Serve(ln)
			if nil != err && http.ErrServerClosed != err {
				s.log.Errorf("serve: %q  error: %s", ln.Addr(), err)
			}
		}(srv, ln)
	}

	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); nil != err {
			s.log.Warnf("shutdown error: %s", err)
		}
	}
	s.log.Info("stopped")
}
