// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/docledger/fingerprint"
)

func runFingerprint(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	fileName, err := checkFileName(c.String("file"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "checksumming file: %s\n", fileName)
	}

	fp, err := fingerprint.FromFile(fileName)
	if nil != err {
		return err
	}

	out := struct {
		FileName    string `json:"file_name"`
		Fingerprint string `json:"fingerprint"`
	}{
		FileName:    fileName,
		Fingerprint: fp.String(),
	}
	printJson(m.w, out)
	return nil
}
