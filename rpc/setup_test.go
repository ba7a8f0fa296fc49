// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/announce"
	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/confidential"
	"github.com/bitmark-inc/docledger/document"
	"github.com/bitmark-inc/docledger/fixtures"
	"github.com/bitmark-inc/docledger/ledger"
	"github.com/bitmark-inc/docledger/peer"
	"github.com/bitmark-inc/docledger/rpc"
	"github.com/bitmark-inc/docledger/storage"
	"github.com/bitmark-inc/docledger/upstream"
)

var validators = block.NewValidators("validator1", "validator2", "genesis", "node1", "node2", "node3")

type eResp struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// a complete node served by httptest
type testNode struct {
	dir       string
	server    *httptest.Server
	handler   http.Handler
	ledger    *ledger.Blockchain
	registry  *announce.Registry
	gossip    *peer.Gossip
	documents *document.Service
}

func newTestNode(t *testing.T, name string, initial []block.Block) *testNode {
	dir, err := ioutil.TempDir("", "rpc-"+name)
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}

	n := &testNode{
		dir: dir,
	}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.handler.ServeHTTP(w, r)
	}))

	store, err := storage.Open(storage.TypeFile, filepath.Join(dir, name))
	if nil != err {
		t.Fatalf("store error: %s", err)
	}
	if nil != initial {
		if err := store.Save(initial); nil != err {
			t.Fatalf("save initial chain error: %s", err)
		}
	}

	n.ledger, err = ledger.New(name, validators, store)
	if nil != err {
		t.Fatalf("ledger error: %s", err)
	}

	client := upstream.New(2 * time.Second)
	n.registry, err = announce.New(n.server.URL, client)
	if nil != err {
		t.Fatalf("registry error: %s", err)
	}

	n.gossip, err = peer.New(n.ledger, n.registry, client, 2*time.Second)
	if nil != err {
		t.Fatalf("gossip error: %s", err)
	}
	n.ledger.SetBroadcaster(n.gossip)

	uploads, err := document.NewUploads(filepath.Join(dir, name, "uploads"))
	if nil != err {
		t.Fatalf("uploads error: %s", err)
	}
	key, err := confidential.NewKey()
	if nil != err {
		t.Fatalf("key error: %s", err)
	}
	n.documents, err = document.New(n.ledger, uploads, key, name)
	if nil != err {
		t.Fatalf("documents error: %s", err)
	}

	n.handler = limitedMux(n, 0, 0)
	return n
}

// routes of n, rate limited if r is positive
func limitedMux(n *testNode, r float64, burst int) http.Handler {
	var limiter *rate.Limiter
	if r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
	h := rpc.NewHandler(logger.New(fixtures.LogCategory), n.ledger, n.registry, n.gossip, n.documents, limiter, "test")
	return h.Mux()
}

func (n *testNode) close() {
	n.server.Close()
	os.RemoveAll(n.dir)
}

func (n *testNode) url(path string) string {
	return n.server.URL + path
}

func postJSON(t *testing.T, url string, args interface{}, reply interface{}) int {
	body, err := json.Marshal(args)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	response, err := http.Post(url, "application/json", bytes.NewReader(body))
	if nil != err {
		t.Fatalf("post: %s  error: %s", url, err)
	}
	defer response.Body.Close()
	if nil != reply {
		if err := json.NewDecoder(response.Body).Decode(reply); nil != err {
			t.Fatalf("decode reply from: %s  error: %s", url, err)
		}
	}
	return response.StatusCode
}

func getJSON(t *testing.T, url string, reply interface{}) int {
	response, err := http.Get(url)
	if nil != err {
		t.Fatalf("get: %s  error: %s", url, err)
	}
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(reply); nil != err {
		t.Fatalf("decode reply from: %s  error: %s", url, err)
	}
	return response.StatusCode
}

// multipart body with optional metadata fields and a document part
func multipartBody(t *testing.T, fields map[string]string, name string, contentType string, content []byte) (*bytes.Buffer, string) {
	buffer := &bytes.Buffer{}
	mw := multipart.NewWriter(buffer)
	for k, v := range fields {
		if err := mw.WriteField(k, v); nil != err {
			t.Fatalf("write field error: %s", err)
		}
	}
	if "" != name {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="document"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if nil != err {
			t.Fatalf("create part error: %s", err)
		}
		part.Write(content)
	}
	if err := mw.Close(); nil != err {
		t.Fatalf("close multipart error: %s", err)
	}
	return buffer, mw.FormDataContentType()
}

func postMultipart(t *testing.T, url string, body *bytes.Buffer, contentType string, reply interface{}) int {
	response, err := http.Post(url, contentType, body)
	if nil != err {
		t.Fatalf("post: %s  error: %s", url, err)
	}
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(reply); nil != err {
		t.Fatalf("decode reply from: %s  error: %s", url, err)
	}
	return response.StatusCode
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); nil != err {
		t.Errorf("encode error: %s", err)
	}
}
