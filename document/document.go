// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package document

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/confidential"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/fingerprint"
)

// file status values
const (
	FilePresent = "present"
	FileMissing = "missing"
	FileUnknown = "unknown"
)

// Ledger - the chain operations ingestion needs
type Ledger interface {
	Seal(doc *block.Document, validator string, timestamp int64) (block.Block, error)
	Lookup(documentID string) (block.Block, bool)
	LookupByHash(documentHash string) (block.Block, bool)
	Documents() []block.Block
}

// Upload - an incoming file
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Entry - a document block with the state of its stored file
type Entry struct {
	Block      block.Block `json:"block"`
	FileStatus string      `json:"fileStatus"`
}

// Service - anchors uploaded documents into the ledger
type Service struct {
	log      *logger.L
	ledger   Ledger
	uploads  *Uploads
	key      confidential.Key
	nodeName string
	now      func() time.Time
}

// New - ingestion for nodeName, paths are wrapped under key
func New(ledger Ledger, uploads *Uploads, key confidential.Key, nodeName string) (*Service, error) {
	log := logger.New("document")
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	return &Service{
		log:      log,
		ledger:   ledger,
		uploads:  uploads,
		key:      key,
		nodeName: nodeName,
		now:      time.Now,
	}, nil
}

func milliseconds(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// Ingest - validate, store, fingerprint and anchor an upload
//
// the block is produced with this node as validator
func (s *Service) Ingest(meta Metadata, upload Upload) (block.Block, error) {
	if err := meta.Validate(); nil != err {
		return block.Block{}, err
	}
	if nil == upload.Content {
		return block.Block{}, fault.MissingFile
	}
	if !AllowedContentType(upload.ContentType) {
		return block.Block{}, fmt.Errorf("%w: %q", fault.InvalidContentType, upload.ContentType)
	}
	if _, found := s.ledger.Lookup(meta.DocumentID); found {
		return block.Block{}, fmt.Errorf("%w: %q", fault.DocumentExists, meta.DocumentID)
	}

	now := s.now()
	path, fp, err := s.uploads.Save(upload.Name, upload.Content, now)
	if nil != err {
		s.log.Errorf("save upload: %q  error: %s", upload.Name, err)
		return block.Block{}, err
	}

	wrapped, err := confidential.Wrap(path, s.key)
	if nil != err {
		_ = s.uploads.Remove(path)
		return block.Block{}, err
	}

	doc := &block.Document{
		DocumentID:         meta.DocumentID,
		Title:              meta.Title,
		Issuer:             meta.Issuer,
		Recipient:          meta.Recipient,
		IssueDate:          meta.IssueDate,
		DocumentHash:       fp.String(),
		FilePath:           wrapped,
		Timestamp:          milliseconds(now),
		VerificationStatus: true,
	}

	b, err := s.ledger.Seal(doc, s.nodeName, milliseconds(s.now()))
	if nil != err {
		_ = s.uploads.Remove(path)
		s.log.Warnf("seal document: %q  error: %s", meta.DocumentID, err)
		return block.Block{}, err
	}

	s.log.Infof("ingested document: %q  hash: %s  block: %d", meta.DocumentID, doc.DocumentHash, b.Index)
	return b, nil
}

// VerifyContent - fingerprint r and find the first block anchoring it,
// nothing is stored
func (s *Service) VerifyContent(r io.Reader) (fingerprint.Fingerprint, block.Block, bool, error) {
	fp, err := fingerprint.FromReader(r)
	if nil != err {
		return fingerprint.Fingerprint{}, block.Block{}, false, err
	}
	b, found := s.ledger.LookupByHash(fp.String())
	return fp, b, found, nil
}

// VerifyID - find the block anchoring documentID
func (s *Service) VerifyID(documentID string) (block.Block, bool, error) {
	if !ValidDocumentID(documentID) {
		return block.Block{}, false, fault.InvalidDocumentId
	}
	b, found := s.ledger.Lookup(documentID)
	return b, found, nil
}

// List - every anchored document with its file status
func (s *Service) List() []Entry {
	blocks := s.ledger.Documents()
	entries := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, Entry{
			Block:      b,
			FileStatus: s.FileStatus(b.Document()),
		})
	}
	return entries
}

// FileStatus - whether the stored file of doc is still on disk
//
// paths wrapped under another key, or malformed, are unknown
func (s *Service) FileStatus(doc *block.Document) string {
	if nil == doc {
		return FileUnknown
	}
	path, err := confidential.Unwrap(doc.FilePath, s.key)
	if nil != err {
		s.log.Debugf("document: %q  unwrap path: %s", doc.DocumentID, err)
		return FileUnknown
	}
	if _, err := os.Stat(path); nil != err {
		return FileMissing
	}
	return FilePresent
}
