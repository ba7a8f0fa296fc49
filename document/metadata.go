// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bitmark-inc/docledger/fault"
)

var documentIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// Metadata - descriptive fields supplied with an upload
type Metadata struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Issuer     string `json:"issuer"`
	Recipient  string `json:"recipient"`
	IssueDate  string `json:"issueDate"`
}

// Validate - all fields are required and the id is restricted to
// letters, digits, hyphen and underscore
func (m *Metadata) Validate() error {
	m.DocumentID = strings.TrimSpace(m.DocumentID)
	m.Title = strings.TrimSpace(m.Title)
	m.Issuer = strings.TrimSpace(m.Issuer)
	m.Recipient = strings.TrimSpace(m.Recipient)
	m.IssueDate = strings.TrimSpace(m.IssueDate)

	fields := []struct {
		name  string
		value string
	}{
		{"documentId", m.DocumentID},
		{"title", m.Title},
		{"issuer", m.Issuer},
		{"recipient", m.Recipient},
		{"issueDate", m.IssueDate},
	}
	for _, f := range fields {
		if "" == f.value {
			return fmt.Errorf("%w: %s", fault.MissingField, f.name)
		}
	}

	if !ValidDocumentID(m.DocumentID) {
		return fault.InvalidDocumentId
	}
	return nil
}

// ValidDocumentID - check the id character set
func ValidDocumentID(id string) bool {
	return documentIDPattern.MatchString(id)
}
