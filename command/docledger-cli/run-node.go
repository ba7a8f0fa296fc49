// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

// commands that pass a node reply straight through

func runBlocks(c *cli.Context) error {
	return passThroughGet(c, "/blocks")
}

func runDocuments(c *cli.Context) error {
	return passThroughGet(c, "/documents")
}

func runPeers(c *cli.Context) error {
	return passThroughGet(c, "/nodes")
}

func runInfo(c *cli.Context) error {
	return passThroughGet(c, "/node-info")
}

func passThroughGet(c *cli.Context, path string) error {

	m := c.App.Metadata["config"].(*metadata)

	var reply interface{}
	if err := m.node.get(path, nil, &reply); nil != err {
		return err
	}
	printJson(m.w, reply)
	return nil
}

func runRegister(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	peerURL, err := checkRequired("url", c.String("url"))
	if nil != err {
		return err
	}

	args := struct {
		NodeURL string `json:"nodeUrl"`
	}{
		NodeURL: peerURL,
	}
	var reply interface{}
	if err := m.node.post("/register-node", args, &reply); nil != err {
		return err
	}
	printJson(m.w, reply)
	return nil
}

func runResolve(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	var reply struct {
		Resolved       bool   `json:"resolved"`
		Message        string `json:"message"`
		NewChainLength int    `json:"newChainLength"`
	}
	if err := m.node.post("/resolve-conflicts", struct{}{}, &reply); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "%s\n", reply.Message)
	}
	printJson(m.w, reply)
	return nil
}
