// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/docledger/fingerprint"
)

// a node that knows one document id and one content hash
func fakeNode(t *testing.T, content []byte) *httptest.Server {
	known := fingerprint.Sum(content).String()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/verify-document-id":
			id := r.URL.Query().Get("documentId")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"verified":   "DOC-1" == id,
				"documentId": id,
			})

		case "/verify-document":
			file, _, err := r.FormFile("document")
			if nil != err {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"code":400,"error":"missing uploaded file"}`))
				return
			}
			defer file.Close()
			fp, _ := fingerprint.FromReader(file)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"verified":     known == fp.String(),
				"documentHash": fp.String(),
			})

		case "/documents":
			if err := r.ParseMultipartForm(1 << 20); nil != err {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if "DUP" == r.FormValue("documentId") {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"code":409,"error":"document id already exists"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"document added","block":{"index":1}}`))

		case "/resolve-conflicts":
			w.Write([]byte(`{"resolved":true,"message":"chain replaced","newChainLength":5}`))

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":404,"error":"not found"}`))
		}
	}))
}

func run(t *testing.T, arguments ...string) (string, string, error) {
	w := &bytes.Buffer{}
	e := &bytes.Buffer{}
	app := newApp(w, e)
	err := app.Run(append([]string{"docledger-cli"}, arguments...))
	return w.String(), e.String(), err
}

func tempFile(t *testing.T, name string, content []byte) (string, func()) {
	dir, err := ioutil.TempDir("", "docledger-cli")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	fileName := filepath.Join(dir, name)
	if err := ioutil.WriteFile(fileName, content, 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return fileName, func() { os.RemoveAll(dir) }
}

func TestVerifyID(t *testing.T) {
	server := fakeNode(t, nil)
	defer server.Close()

	out, status, err := run(t, "--node", server.URL, "verify-id", "--id", "DOC-1")
	assert.Nil(t, err, "run error")
	assert.Contains(t, status, "VERIFIED: document id: DOC-1", "wrong status line")
	assert.Contains(t, out, `"verified": true`, "wrong output")

	_, status, err = run(t, "--node", server.URL, "verify-id", "--id", "DOC-2")
	assert.Nil(t, err, "run error")
	assert.Contains(t, status, "NOT FOUND", "wrong status line")

	_, _, err = run(t, "--node", server.URL, "verify-id")
	assert.NotNil(t, err, "missing id accepted")
}

func TestVerifyFile(t *testing.T) {
	content := []byte("signed transcript")
	server := fakeNode(t, content)
	defer server.Close()

	fileName, cleanup := tempFile(t, "transcript.pdf", content)
	defer cleanup()

	out, status, err := run(t, "-n", server.URL, "verify", "-f", fileName)
	assert.Nil(t, err, "run error")
	assert.Contains(t, status, "VERIFIED", "wrong status line")
	assert.Contains(t, out, fingerprint.Sum(content).String(), "hash not shown")
}

func TestAdd(t *testing.T) {
	server := fakeNode(t, nil)
	defer server.Close()

	fileName, cleanup := tempFile(t, "diploma.pdf", []byte("diploma"))
	defer cleanup()

	arguments := []string{"-n", server.URL, "add", "-f", fileName, "--title", "Diploma", "--issuer", "University", "-r", "Ana", "-d", "2024-06-30"}

	out, _, err := run(t, append(arguments, "-i", "DOC-9")...)
	assert.Nil(t, err, "run error")
	assert.Contains(t, out, `"document added"`, "wrong output")

	_, _, err = run(t, append(arguments, "-i", "DUP")...)
	if assert.NotNil(t, err, "duplicate accepted") {
		assert.Contains(t, err.Error(), "document id already exists", "node error not reported")
	}

	_, _, err = run(t, "-n", server.URL, "add", "-f", fileName, "-i", "DOC-10")
	assert.NotNil(t, err, "missing metadata accepted")
}

func TestResolve(t *testing.T) {
	server := fakeNode(t, nil)
	defer server.Close()

	out, _, err := run(t, "-n", server.URL, "resolve")
	assert.Nil(t, err, "run error")
	assert.Contains(t, out, `"newChainLength": 5`, "wrong output")
}

func TestBadNode(t *testing.T) {
	_, _, err := run(t, "-n", "not a url", "blocks")
	assert.NotNil(t, err, "bad node url accepted")
}

func TestFingerprint(t *testing.T) {
	content := []byte("local file")
	fileName, cleanup := tempFile(t, "local.txt", content)
	defer cleanup()

	out, _, err := run(t, "fingerprint", "-f", fileName)
	assert.Nil(t, err, "run error")
	assert.Contains(t, out, fingerprint.Sum(content).String(), "wrong fingerprint")
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeOf("a.PDF", ""), "wrong pdf type")
	assert.Equal(t, "text/plain", contentTypeOf("a.txt", ""), "wrong text type")
	assert.Equal(t, "image/png", contentTypeOf("a.bin", "image/png"), "given type ignored")
	assert.Equal(t, "application/octet-stream", contentTypeOf("a.unknown-extension", ""), "wrong fallback")
}
