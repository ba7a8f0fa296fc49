// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/docledger/fault"
)

// longest a request will be delayed before it is refused
const maximumDelay = 2 * time.Second

// limit - wait for a token, refusing if the wait would be too long
func limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ApiRequestRateLimited
	}
	delay := r.Delay()
	if delay > maximumDelay {
		r.Cancel()
		return fault.ApiRequestRateLimited
	}
	time.Sleep(delay)
	return nil
}

// rate limit every request passing through next
func limitHandler(limiter *rate.Limiter, next http.Handler) http.Handler {
	if nil == limiter {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := limit(limiter); nil != err {
			sendError(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
