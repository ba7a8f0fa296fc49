// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/announce"
	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/counter"
	"github.com/bitmark-inc/docledger/document"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/ledger"
	"github.com/bitmark-inc/docledger/peer"
	"github.com/bitmark-inc/docledger/upstream"
)

// request body limits
const (
	maximumJSONBody      = 64 << 20
	maximumMultipartBody = document.MaxFileSize + 1<<20
	multipartMemory      = 1 << 20
	uploadField          = "document"
)

// Handler - HTTP endpoints of one node
type Handler struct {
	log       *logger.L
	ledger    *ledger.Blockchain
	registry  *announce.Registry
	gossip    *peer.Gossip
	documents *document.Service
	limiter   *rate.Limiter
	start     time.Time
	version   string
	requests  counter.Counter
}

// NewHandler - limiter may be nil to disable rate limiting
func NewHandler(
	log *logger.L,
	bc *ledger.Blockchain,
	registry *announce.Registry,
	gossip *peer.Gossip,
	documents *document.Service,
	limiter *rate.Limiter,
	version string,
) *Handler {
	return &Handler{
		log:       log,
		ledger:    bc,
		registry:  registry,
		gossip:    gossip,
		documents: documents,
		limiter:   limiter,
		start:     time.Now(),
		version:   version,
	}
}

// Mux - route table
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(upstream.RegisterNodePath, h.RegisterNode)
	mux.HandleFunc(upstream.SyncNodesPath, h.SyncNodes)
	mux.HandleFunc(upstream.ReceiveBlockPath, h.ReceiveBlock)
	mux.HandleFunc(upstream.BlocksPath, h.Blocks)
	mux.HandleFunc("/nodes", h.Nodes)
	mux.HandleFunc("/node-info", h.NodeInfo)
	mux.HandleFunc("/resolve-conflicts", h.ResolveConflicts)
	mux.HandleFunc("/documents", h.Documents)
	mux.HandleFunc("/verify-document", h.VerifyDocument)
	mux.HandleFunc("/verify-document-id", h.VerifyDocumentID)
	mux.HandleFunc("/", h.Root)
	return limitHandler(h.limiter, h.count(mux))
}

func (h *Handler) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.requests.Increment()
		next.ServeHTTP(w, r)
	})
}

// Root - this matches anything not matched and returns error
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	sendNotFound(w)
}

// map an error class to a status code
func statusOf(err error) int {
	switch {
	case errors.Is(err, fault.FileTooLarge):
		return http.StatusRequestEntityTooLarge
	case fault.IsErrExists(err):
		return http.StatusConflict
	case fault.IsErrInvalid(err), fault.IsErrInvalidBlock(err):
		return http.StatusBadRequest
	case fault.IsErrNotFound(err):
		return http.StatusNotFound
	case fault.IsErrPeer(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if http.MethodPost != r.Method {
		sendMethodNotAllowed(w)
		return false
	}
	body := http.MaxBytesReader(w, r.Body, maximumJSONBody)
	if err := json.NewDecoder(body).Decode(v); nil != err {
		sendBadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// RegisterNode - add the caller's node and run the handshake
func (h *Handler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var args upstream.RegisterArguments
	if !decodeJSON(w, r, &args) {
		return
	}

	peers, err := h.registry.Register(r.Context(), args.NodeURL)
	if nil != err {
		h.log.Debugf("register node: %q  error: %s", args.NodeURL, err)
		sendError(w, err.Error(), statusOf(err))
		return
	}

	reply := struct {
		Message    string   `json:"message"`
		Nodes      []string `json:"nodes"`
		TotalNodes int      `json:"totalNodes"`
	}{
		Message:    "node registered",
		Nodes:      peers,
		TotalNodes: len(peers),
	}
	sendReply(w, reply)
}

// SyncNodes - merge a list of peers
func (h *Handler) SyncNodes(w http.ResponseWriter, r *http.Request) {
	var args struct {
		Nodes *[]string `json:"nodes"`
	}
	if !decodeJSON(w, r, &args) {
		return
	}
	if nil == args.Nodes {
		sendBadRequest(w, "nodes array is required")
		return
	}

	reply := struct {
		Message string   `json:"message"`
		Nodes   []string `json:"nodes"`
	}{
		Message: "nodes synchronized",
		Nodes:   h.registry.Sync(*args.Nodes),
	}
	sendReply(w, reply)
}

// ReceiveBlock - validate and append a block from a peer
func (h *Handler) ReceiveBlock(w http.ResponseWriter, r *http.Request) {
	var b block.Block
	if !decodeJSON(w, r, &b) {
		return
	}

	err := h.gossip.Receive(b)
	if nil != err {
		var ve *block.ValidationError
		if errors.As(err, &ve) && errors.Is(err, fault.PreviousHashMismatch) {
			reply := struct {
				Message              string `json:"message"`
				ExpectedPreviousHash string `json:"expectedPreviousHash"`
				ReceivedPreviousHash string `json:"receivedPreviousHash"`
			}{
				Message:              "block rejected: " + ve.Err.Error(),
				ExpectedPreviousHash: ve.Expected,
				ReceivedPreviousHash: ve.Received,
			}
			sendStatus(w, http.StatusBadRequest, reply)
			return
		}
		if fault.IsErrInvalidBlock(err) {
			reply := struct {
				Message string `json:"message"`
			}{
				Message: "block rejected: " + err.Error(),
			}
			sendStatus(w, http.StatusBadRequest, reply)
			return
		}
		sendError(w, err.Error(), statusOf(err))
		return
	}

	reply := struct {
		Message string      `json:"message"`
		Block   block.Block `json:"block"`
	}{
		Message: "block accepted",
		Block:   b,
	}
	sendReply(w, reply)
}

// Blocks - the whole chain
func (h *Handler) Blocks(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}
	sendReply(w, h.ledger.Blocks())
}

// Nodes - this node's name and peers
func (h *Handler) Nodes(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}
	reply := struct {
		NodeName string   `json:"nodeName"`
		Nodes    []string `json:"nodes"`
	}{
		NodeName: h.ledger.NodeName(),
		Nodes:    h.registry.Peers(),
	}
	sendReply(w, reply)
}

// NodeInfo - summary of this node
func (h *Handler) NodeInfo(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	peersCount := h.registry.Count()
	status := "Standalone"
	if peersCount > 0 {
		status = "Connected"
	}

	reply := struct {
		NodeName    string            `json:"nodeName"`
		URL         string            `json:"url"`
		Status      string            `json:"status"`
		Version     string            `json:"version"`
		Uptime      string            `json:"uptime"`
		BlocksCount int               `json:"blocksCount"`
		PeersCount  int               `json:"peersCount"`
		Validators  []string          `json:"validators"`
		Requests    uint64            `json:"requests"`
		Counters    map[string]uint64 `json:"counters"`
	}{
		NodeName:    h.ledger.NodeName(),
		URL:         h.registry.Self(),
		Status:      status,
		Version:     h.version,
		Uptime:      time.Since(h.start).Truncate(time.Second).String(),
		BlocksCount: h.ledger.Length() - 1,
		PeersCount:  peersCount,
		Validators:  h.ledger.Validators().List(),
		Requests:    h.requests.Uint64(),
		Counters:    h.gossip.Counters(),
	}
	sendReply(w, reply)
}

// ResolveConflicts - adopt a longer valid peer chain if there is one
func (h *Handler) ResolveConflicts(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	resolved, length := h.gossip.ResolveConflicts(r.Context())

	message := "no conflict to resolve"
	if resolved {
		message = "chain replaced by longer valid chain"
	}
	reply := struct {
		Resolved       bool   `json:"resolved"`
		Message        string `json:"message"`
		NewChainLength int    `json:"newChainLength"`
	}{
		Resolved:       resolved,
		Message:        message,
		NewChainLength: length,
	}
	sendReply(w, reply)
}

// Documents - GET lists anchored documents, POST ingests an upload
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sendReply(w, h.documents.List())
	case http.MethodPost:
		h.addDocument(w, r)
	default:
		sendMethodNotAllowed(w)
	}
}

func (h *Handler) addDocument(w http.ResponseWriter, r *http.Request) {
	file, name, contentType, ok := openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	meta := document.Metadata{
		DocumentID: r.FormValue("documentId"),
		Title:      r.FormValue("title"),
		Issuer:     r.FormValue("issuer"),
		Recipient:  r.FormValue("recipient"),
		IssueDate:  r.FormValue("issueDate"),
	}
	upload := document.Upload{
		Name:        name,
		ContentType: contentType,
		Content:     file,
	}

	b, err := h.documents.Ingest(meta, upload)
	if nil != err {
		sendError(w, err.Error(), statusOf(err))
		return
	}

	reply := struct {
		Message string      `json:"message"`
		Block   block.Block `json:"block"`
	}{
		Message: "document added",
		Block:   b,
	}
	sendStatus(w, http.StatusCreated, reply)
}

// VerifyDocument - check whether uploaded content is anchored
func (h *Handler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost != r.Method {
		sendMethodNotAllowed(w)
		return
	}
	file, _, _, ok := openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	fp, b, found, err := h.documents.VerifyContent(file)
	if nil != err {
		sendError(w, err.Error(), statusOf(err))
		return
	}

	reply := struct {
		Verified     bool         `json:"verified"`
		DocumentHash string       `json:"documentHash"`
		Block        *block.Block `json:"block,omitempty"`
	}{
		Verified:     found,
		DocumentHash: fp.String(),
	}
	if found {
		reply.Block = &b
	}
	sendReply(w, reply)
}

// VerifyDocumentID - check whether a document id is anchored
//
// accepts GET ?documentId= or POST {"documentId"}
func (h *Handler) VerifyDocumentID(w http.ResponseWriter, r *http.Request) {
	var args struct {
		DocumentID string `json:"documentId"`
	}
	switch r.Method {
	case http.MethodGet:
		args.DocumentID = r.URL.Query().Get("documentId")
	case http.MethodPost:
		if !decodeJSON(w, r, &args) {
			return
		}
	default:
		sendMethodNotAllowed(w)
		return
	}

	b, found, err := h.documents.VerifyID(args.DocumentID)
	if nil != err {
		sendError(w, err.Error(), statusOf(err))
		return
	}

	reply := struct {
		Verified   bool         `json:"verified"`
		DocumentID string       `json:"documentId"`
		Block      *block.Block `json:"block,omitempty"`
	}{
		Verified:   found,
		DocumentID: args.DocumentID,
	}
	if found {
		reply.Block = &b
	}
	sendReply(w, reply)
}

// parse a multipart request and open its document part
func openUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maximumMultipartBody)
	if err := r.ParseMultipartForm(multipartMemory); nil != err {
		if strings.Contains(err.Error(), "request body too large") {
			sendError(w, fault.FileTooLarge.Error(), http.StatusRequestEntityTooLarge)
		} else {
			sendBadRequest(w, "invalid multipart body: "+err.Error())
		}
		return nil, "", "", false
	}

	file, header, err := r.FormFile(uploadField)
	if nil != err {
		sendBadRequest(w, fault.MissingFile.Error())
		return nil, "", "", false
	}
	return file, header.Filename, header.Header.Get("Content-Type"), true
}
