// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/confidential"
	"github.com/bitmark-inc/docledger/storage"
	"github.com/bitmark-inc/docledger/util"
)

const (
	rpcCertificateKeyFilename = "rpc.crt"
	rpcPrivateKeyFilename     = "rpc.key"

	encryptionKeyFilename = "docledger.key"
)

// setup command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-rpc-cert", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := makeSelfSignedCertificate("rpc", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)

	case "gen-key", "key":
		keyFilename := getFilenameWithDirectory(arguments, encryptionKeyFilename)

		if util.EnsureFileExists(keyFilename) {
			fmt.Printf("generate encryption key: %q error: file already exists\n", keyFilename)
			exitwithstatus.Exit(1)
		}

		key, err := confidential.NewKey()
		if nil != err {
			fmt.Printf("generate encryption key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}

		if err := ioutil.WriteFile(keyFilename, []byte(key.String()+"\n"), 0600); nil != err {
			os.Remove(keyFilename)
			fmt.Printf("generate encryption key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}

		fmt.Printf("generated encryption key: %q\n", keyFilename)

	case "gen-salt", "salt":
		salt, err := confidential.MakeSalt()
		if nil != err {
			exitwithstatus.Message("generate salt error: %s", err)
		}
		fmt.Printf("%s\n", hex.EncodeToString(salt))

	case "dns-txt", "txt":
		return false // defer processing until configuration is read

	case "start", "run":
		return false // continue processing

	case "verify-chain", "verify", "dump-chain", "dump":
		return false // defer processing until configuration is read

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [--define=NAME=VALUE...] [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  gen-rpc-cert [DIR]         (rpc)    - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-rpc-cert [DIR] [IPs...]         - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-key [DIR]              (key)    - create a file path encryption key in: %q\n", "DIR/"+encryptionKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-salt                   (salt)   - display a random salt for passphrase keys\n")
		fmt.Printf("\n")

		fmt.Printf("  dns-txt                    (txt)    - display the data to put in a dns TXT record\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  verify-chain               (verify) - validate the stored chain\n")
		fmt.Printf("\n")

		fmt.Printf("  dump-chain [FILE]          (dump)   - write the stored chain as JSON to stdout/file\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "dns-txt", "txt":
		dnsTXT(options)

	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the stored chain is opened read only so these commands can run
// beside a live node using the file store
func processDataCommand(log *logger.L, arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "verify-chain", "verify":
		blocks := loadChain(options)

		corrupt := 0
		for _, b := range blocks {
			if b.Hash != block.Rebuild(b).Hash {
				corrupt += 1
			}
		}

		err := block.ValidateChain(blocks, block.NewValidators(options.Validators...))
		if nil != err {
			log.Warnf("verify chain error: %s", err)
			exitwithstatus.Message("chain of: %d blocks is invalid: %s", len(blocks), err)
		}
		if corrupt > 0 {
			exitwithstatus.Message("chain of: %d blocks has: %d blocks with a corrupt hash", len(blocks), corrupt)
		}
		fmt.Printf("chain of: %d blocks is valid\n", len(blocks))

	case "dump-chain", "dump":
		blocks := loadChain(options)

		output := "-"
		if len(arguments) > 0 {
			output = strings.TrimSpace(arguments[0])
		}

		var fd io.WriteCloser = os.Stdout
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if nil != err {
				exitwithstatus.Message("error: creating: %q error: %s", output, err)
			}
			fd = f
		}

		s, err := json.MarshalIndent(blocks, "", "  ")
		if nil != err {
			exitwithstatus.Message("dump chain JSON error: %s", err)
		}
		fmt.Fprintf(fd, "%s\n", s)
		fd.Close()

	default:
		exitwithstatus.Message("error: no such command: %s", command)

	}

	// indicate processing complete and perform normal exit from main
	return true
}

func loadChain(options *Configuration) []block.Block {
	store, err := storage.OpenReadOnly(options.Database.Type, options.Database.Directory)
	if nil != err {
		exitwithstatus.Message("open storage error: %s", err)
	}
	defer store.Close()

	blocks, err := store.Load()
	if nil != err {
		exitwithstatus.Message("load chain error: %s", err)
	}
	return blocks
}

// print out the DNS TXT record
func dnsTXT(options *Configuration) {
	//   <TAG> u=<PUBLIC-URL> [f=<SHA3-256(cert)>]
	const txtRecord = `TXT "docledger=v1 u=%s"` + "\n"
	const txtRecordWithFingerprint = `TXT "docledger=v1 u=%s f=%x"` + "\n"

	rpc := options.RPC

	fmt.Printf("public url:      %s\n", options.PublicURL)

	if "" == rpc.Certificate {
		fmt.Printf(txtRecord, options.PublicURL)
		return
	}

	fingerprint, err := certificateFingerprint(rpc.Certificate, rpc.PrivateKey)
	if nil != err {
		exitwithstatus.Message("error: cannot decode certificate: %q  error: %s", rpc.Certificate, err)
	}

	fmt.Printf("rpc fingerprint: %x\n", fingerprint)
	fmt.Printf(txtRecordWithFingerprint, options.PublicURL, fingerprint)
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}
