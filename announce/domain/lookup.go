// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package domain

import (
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/fault"
)

// Lookuper - interface to lookup domain name
type Lookuper interface {
	Lookup(domain string) ([]DnsTxt, error)
}

type lookuper struct {
	log *logger.L
	f   func(string) ([]string, error)
}

// NewLookuper - f is normally net.LookupTXT
func NewLookuper(log *logger.L, f func(string) ([]string, error)) Lookuper {
	return &lookuper{
		log: log,
		f:   f,
	}
}

// Lookup - fetch and decode TXT records, invalid records are skipped
func (l *lookuper) Lookup(domain string) ([]DnsTxt, error) {
	if "" == domain {
		return nil, fault.InvalidNodeDomain
	}

	texts, err := l.f(domain)
	if nil != err {
		l.log.Errorf("lookup TXT record error: %s", err)
		return nil, err
	}

	result := make([]DnsTxt, 0, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		tag, err := parseTxt(t)
		if nil != err {
			l.log.Debugf("ignore TXT[%d]: %q  error: %s", i, t, err)
			continue
		}
		l.log.Infof("process TXT[%d]: %q", i, t)
		l.log.Infof("result[%d]: url: %q  fingerprint: %x", i, tag.URL, tag.CertificateFingerprint)
		result = append(result, *tag)
	}
	return result, nil
}
