// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package domain

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/background"
)

// node URLs are published as DNS TXT records under a nodes domain:
//   txt-record=nodes.example.com,"docledger=v1 u=https://node1.example.com:3000"
// the records are read at start and again at the SOA TTL interval

const (
	timeInterval = 1 * time.Hour // upper bound for re-fetching nodes domain
	configFile   = "/etc/resolv.conf"
)

// Registrar - receives discovered node URLs
type Registrar interface {
	Register(ctx context.Context, nodeURL string) ([]string, error)
}

type domain struct {
	log        *logger.L
	domainName string
	registrar  Registrar
	lookuper   Lookuper
	interval   func(string, *logger.L) time.Duration
}

// Run - background processing interface
func (d *domain) Run(_ interface{}, shutdown <-chan struct{}) {
	timer := time.After(d.interval(d.domainName, d.log))

loop:
	for {
		select {
		case <-timer:
			timer = time.After(d.interval(d.domainName, d.log))
			txts, err := d.lookuper.Lookup(d.domainName)
			if nil != err {
				continue loop
			}
			d.register(txts)

		case <-shutdown:
			break loop
		}
	}
	d.log.Info("stopped")
}

func (d *domain) register(txts []DnsTxt) {
	for i, t := range txts {
		_, err := d.registrar.Register(context.Background(), t.URL)
		if nil != err {
			d.log.Debugf("result[%d]: register: %s  error: %s", i, t.URL, err)
			continue
		}
		d.log.Infof("result[%d]: registered: %s", i, t.URL)
	}
}

// get interval time for lookup node domain txt record
func interval(domain string, log *logger.L) time.Duration {
	t := timeInterval
	var servers []string // dns name server

	// reading default configuration file
	conf, err := dns.ClientConfigFromFile(configFile)

	if nil != err {
		log.Warnf("reading %s error: %s", configFile, err)
		goto done
	}

	if 0 == len(conf.Servers) {
		log.Warnf("cannot get dns name server")
		goto done
	}

	servers = conf.Servers
	// limit the nameservers to lookup
	if len(servers) > 3 {
		servers = servers[:3]
	}

loop:
	for _, server := range servers {

		s := net.JoinHostPort(server, conf.Port)
		c := dns.Client{}
		msg := dns.Msg{}
		msg.SetQuestion(dns.Fqdn(domain), dns.TypeSOA)

		r, _, err := c.Exchange(&msg, s)
		if nil != err {
			log.Debugf("exchange with dns server %q error: %s", s, err)
			continue loop
		}

		for _, section := range [][]dns.RR{r.Answer, r.Ns, r.Extra} {
			ttl := ttl(section)
			if 0 < ttl {
				log.Infof("got TTL record from server %q value %d", s, ttl)
				ttlSec := time.Duration(ttl) * time.Second
				if timeInterval > ttlSec {
					t = ttlSec
				}
				break loop
			}
		}
	}

done:
	log.Infof("time to re-fetching node domain: %v", t)
	return t
}

// TTL of the first record, SOA preferred
func ttl(rrs []dns.RR) uint32 {
	for _, rr := range rrs {
		if soa, ok := rr.(*dns.SOA); ok {
			return soa.Hdr.Ttl
		}
	}
	if 0 < len(rrs) {
		return rrs[0].Header().Ttl
	}
	return 0
}

// New - look up the domain once and return the refresh process
func New(log *logger.L, domainName string, registrar Registrar, f func(string) ([]string, error)) (background.Process, error) {
	log.Info("initialising…")

	d := &domain{
		log:        log,
		domainName: domainName,
		registrar:  registrar,
		lookuper:   NewLookuper(log, f),
		interval:   interval,
	}

	txts, err := d.lookuper.Lookup(d.domainName)
	if nil != err {
		return nil, err
	}
	d.register(txts)

	return d, nil
}
