// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/docledger/announce"
	"github.com/bitmark-inc/docledger/announce/domain"
	"github.com/bitmark-inc/docledger/background"
	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/document"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/ledger"
	"github.com/bitmark-inc/docledger/peer"
	"github.com/bitmark-inc/docledger/rpc"
	"github.com/bitmark-inc/docledger/storage"
	"github.com/bitmark-inc/docledger/upstream"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "define", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'd'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// NAME=VALUE pairs visible to the configuration script as arg["NAME"]
	variables := make(map[string]string)
	for _, d := range options["define"] {
		s := strings.SplitN(d, "=", 2)
		if 2 != len(s) || "" == s[0] {
			exitwithstatus.Message("%s: define: %q is not NAME=VALUE", program, d)
		}
		variables[s[0]] = s[1]
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, variables)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// these commands only read the stored chain
	if len(arguments) > 0 && processDataCommand(log, arguments, theConfiguration) {
		return
	}

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("node name: %q", theConfiguration.NodeName)
	log.Infof("public url: %q", theConfiguration.PublicURL)
	log.Infof("validators: %q", theConfiguration.Validators)
	log.Infof("database: %q  type: %s", theConfiguration.Database.Directory, theConfiguration.Database.Type)

	// connection info
	log.Debugf("%s = %#v", "RPC", theConfiguration.RPC)
	log.Debugf("%s = %#v", "Peering", theConfiguration.Peering)

	key, err := encryptionKey(theConfiguration)
	if nil != err {
		log.Criticalf("encryption key error: %s", err)
		exitwithstatus.Message("encryption key error: %s", err)
	}

	// start the data storage
	log.Info("initialise storage")
	store, err := storage.Open(theConfiguration.Database.Type, theConfiguration.Database.Directory)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	log.Info("initialise ledger")
	validators := block.NewValidators(theConfiguration.Validators...)
	bc, err := ledger.New(theConfiguration.NodeName, validators, store)
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}
	log.Infof("chain length: %d", bc.Length())

	client := upstream.New(theConfiguration.timeout())

	log.Info("initialise announce")
	registry, err := announce.New(theConfiguration.PublicURL, client)
	if nil != err {
		log.Criticalf("announce initialise error: %s", err)
		exitwithstatus.Message("announce initialise error: %s", err)
	}

	log.Info("initialise peer")
	gossip, err := peer.New(bc, registry, client, theConfiguration.timeout())
	if nil != err {
		log.Criticalf("peer initialise error: %s", err)
		exitwithstatus.Message("peer initialise error: %s", err)
	}
	bc.SetBroadcaster(gossip)

	log.Info("initialise document")
	uploads, err := document.NewUploads(theConfiguration.Uploads)
	if nil != err {
		log.Criticalf("uploads initialise error: %s", err)
		exitwithstatus.Message("uploads initialise error: %s", err)
	}
	documents, err := document.New(bc, uploads, key, theConfiguration.NodeName)
	if nil != err {
		log.Criticalf("document initialise error: %s", err)
		exitwithstatus.Message("document initialise error: %s", err)
	}

	// start up the rpc background process
	log.Info("initialise rpc")
	var limiter *rate.Limiter
	if theConfiguration.RPC.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(theConfiguration.RPC.RateLimit), theConfiguration.RPC.Burst)
	}
	rpcLog := logger.New("rpc")
	handler := rpc.NewHandler(rpcLog, bc, registry, gossip, documents, limiter, version)
	server, err := rpc.NewServer(&theConfiguration.RPC, rpcLog, handler.Mux())
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}

	// must be serving before any peer can call back
	services := background.Start(background.Processes{server}, nil)
	defer services.Stop()

	// join the network
	processes := background.Processes{}

	if "" != theConfiguration.Peering.NodesDomain {
		log.Infof("nodes domain: %q", theConfiguration.Peering.NodesDomain)
		d, err := domain.New(logger.New("domain"), theConfiguration.Peering.NodesDomain, registry, net.LookupTXT)
		if nil != err {
			log.Warnf("nodes domain: %q  error: %s", theConfiguration.Peering.NodesDomain, err)
		} else {
			processes = append(processes, d)
		}
	}

	if n := len(theConfiguration.Peering.Bootstrap); n > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), theConfiguration.timeout()*2)
		registered := registry.Bootstrap(ctx, theConfiguration.Peering.Bootstrap)
		cancel()
		log.Infof("bootstrap: registered with: %d of: %d nodes", registered, n)
	}

	if registry.Count() > 0 {
		resolved, length := gossip.ResolveConflicts(context.Background())
		log.Infof("initial resolve: resolved: %t  length: %d", resolved, length)
	}

	if interval := theConfiguration.resolveInterval(); interval > 0 {
		processes = append(processes, peer.NewResolver(gossip, interval))
	}

	network := background.Start(processes, nil)
	defer network.Stop()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
