// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// the tag to detect applicable TXT records from DNS

package domain

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/bitmark-inc/docledger/fault"
)

const supportedTag = "docledger=v1"

const fingerprintLength = 2 * 32 // characters

// DnsTxt - decoded record
type DnsTxt struct {
	URL                    string
	CertificateFingerprint []byte
}

// decode DNS TXT records of this form
//
//   docledger=v1 u=<http(s) base URL> [f=<SHA3-256(certificate)>]
//
// any other word or a repeated word makes the record invalid
func parseTxt(s string) (*DnsTxt, error) {

	t := &DnsTxt{}

	countU := 0
	countF := 0

words:
	for i, w := range strings.Fields(s) {

		if 0 == i {
			if supportedTag == w {
				continue words
			}
			return nil, fault.InvalidDnsTxtResponse
		}

		// require form: <letter>=<word>
		if len(w) < 3 || '=' != w[1] {
			return nil, fault.InvalidDnsTxtResponse
		}

		parameter := w[2:]
		switch w[0] {
		case 'u':
			u, err := url.Parse(parameter)
			if nil != err || ("http" != u.Scheme && "https" != u.Scheme) || "" == u.Host {
				return nil, fault.InvalidNodeURL
			}
			t.URL = strings.TrimRight(parameter, "/")
			countU += 1
		case 'f':
			if len(parameter) != fingerprintLength {
				return nil, fault.InvalidFingerprint
			}
			fp, err := hex.DecodeString(parameter)
			if nil != err {
				return nil, fault.InvalidFingerprint
			}
			t.CertificateFingerprint = fp
			countF += 1
		default:
			return nil, fault.InvalidDnsTxtResponse
		}
	}

	if 1 != countU || countF > 1 {
		return nil, fault.InvalidDnsTxtResponse
	}

	return t, nil
}
