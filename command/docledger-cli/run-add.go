// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/docledger/block"
)

func runAdd(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	fileName, err := checkFileName(c.String("file"))
	if nil != err {
		return err
	}

	fields := map[string]string{}
	for _, f := range []struct {
		flag  string
		field string
	}{
		{"id", "documentId"},
		{"title", "title"},
		{"issuer", "issuer"},
		{"recipient", "recipient"},
		{"date", "issueDate"},
	} {
		value, err := checkRequired(f.flag, c.String(f.flag))
		if nil != err {
			return err
		}
		fields[f.field] = value
	}

	contentType := contentTypeOf(fileName, c.String("content-type"))
	if m.verbose {
		fmt.Fprintf(m.e, "uploading: %s  content type: %s\n", fileName, contentType)
	}

	file, err := os.Open(fileName)
	if nil != err {
		return err
	}
	defer file.Close()

	var reply struct {
		Message string      `json:"message"`
		Block   block.Block `json:"block"`
	}
	err = m.node.upload("/documents", fields, filepath.Base(fileName), contentType, file, &reply)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "%s: block: %d\n", reply.Message, reply.Block.Index)
	}
	printJson(m.w, reply)
	return nil
}
