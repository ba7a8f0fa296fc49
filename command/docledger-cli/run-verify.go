// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/docledger/block"
)

type verifyReply struct {
	Verified     bool         `json:"verified"`
	DocumentHash string       `json:"documentHash,omitempty"`
	DocumentID   string       `json:"documentId,omitempty"`
	Block        *block.Block `json:"block,omitempty"`
}

func runVerify(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	fileName, err := checkFileName(c.String("file"))
	if nil != err {
		return err
	}

	file, err := os.Open(fileName)
	if nil != err {
		return err
	}
	defer file.Close()

	var reply verifyReply
	err = m.node.upload("/verify-document", nil, filepath.Base(fileName), contentTypeOf(fileName, ""), file, &reply)
	if nil != err {
		return err
	}

	printVerified(m, reply.Verified, fileName+"  hash: "+reply.DocumentHash)
	printJson(m.w, reply)
	return nil
}

func runVerifyID(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id, err := checkRequired("id", c.String("id"))
	if nil != err {
		return err
	}

	var reply verifyReply
	err = m.node.get("/verify-document-id", url.Values{"documentId": []string{id}}, &reply)
	if nil != err {
		return err
	}

	printVerified(m, reply.Verified, "document id: "+id)
	printJson(m.w, reply)
	return nil
}
