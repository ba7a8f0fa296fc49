// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"
)

const (
	defaultNode    = "http://127.0.0.1:3000"
	defaultTimeout = 30 * time.Second
)

type metadata struct {
	node    *nodeClient
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "docledger-cli"
	app.Usage = "anchor and verify documents on a docledger node"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "node, n",
			Value:  defaultNode,
			Usage:  " base `URL` of the node",
			EnvVar: "DOCLEDGER_NODE",
		},
		cli.DurationFlag{
			Name:  "timeout, t",
			Value: defaultTimeout,
			Usage: " request `TIMEOUT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "add",
			Usage:     "upload a document and anchor it in a new block",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*document `FILE`",
				},
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*document `ID` [A-Za-z0-9_-]",
				},
				cli.StringFlag{
					Name:  "title",
					Value: "",
					Usage: "*document `TITLE`",
				},
				cli.StringFlag{
					Name:  "issuer",
					Value: "",
					Usage: "*issuing `PARTY`",
				},
				cli.StringFlag{
					Name:  "recipient, r",
					Value: "",
					Usage: "*receiving `PARTY`",
				},
				cli.StringFlag{
					Name:  "date, d",
					Value: "",
					Usage: "*issue `DATE`",
				},
				cli.StringFlag{
					Name:  "content-type, c",
					Value: "",
					Usage: " content `TYPE` [derived from file extension]",
				},
			},
			Action: runAdd,
		},
		{
			Name:      "verify",
			Usage:     "check whether the content of a file is anchored",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*document `FILE`",
				},
			},
			Action: runVerify,
		},
		{
			Name:      "verify-id",
			Usage:     "check whether a document id is anchored",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*document `ID`",
				},
			},
			Action: runVerifyID,
		},
		{
			Name:   "documents",
			Usage:  "list anchored documents",
			Action: runDocuments,
		},
		{
			Name:   "blocks",
			Usage:  "display the chain",
			Action: runBlocks,
		},
		{
			Name:   "peers",
			Usage:  "display the peers of the node",
			Action: runPeers,
		},
		{
			Name:   "info",
			Usage:  "display node information",
			Action: runInfo,
		},
		{
			Name:      "register",
			Usage:     "register a peer with the node",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "url, u",
					Value: "",
					Usage: "*peer base `URL`",
				},
			},
			Action: runRegister,
		},
		{
			Name:   "resolve",
			Usage:  "ask the node to adopt the longest valid peer chain",
			Action: runResolve,
		},
		{
			Name:      "fingerprint",
			Usage:     "display the document hash of a local file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*document `FILE`",
				},
			},
			Action: runFingerprint,
		},
		{
			Name:   "version",
			Usage:  "display docledger-cli version",
			Action: runVersion,
		},
	}

	// set up the node client for every command
	app.Before = func(c *cli.Context) error {
		node, err := newNodeClient(c.GlobalString("node"), c.GlobalDuration("timeout"))
		if nil != err {
			return err
		}
		verbose := c.GlobalBool("verbose")
		if verbose {
			fmt.Fprintf(c.App.ErrWriter, "node: %s\n", node.base)
		}
		c.App.Metadata["config"] = &metadata{
			node:    node,
			verbose: verbose,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
