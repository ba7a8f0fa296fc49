// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/announce"
	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/confidential"
	"github.com/bitmark-inc/docledger/configuration"
	"github.com/bitmark-inc/docledger/document"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/rpc"
	"github.com/bitmark-inc/docledger/storage"
	"github.com/bitmark-inc/docledger/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultDatabaseDirectory = "data"
	defaultUploadsDirectory  = "uploads"

	defaultLogDirectory = "log"
	defaultLogFile      = "docledgerd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultPeerTimeout = 5 // seconds
	defaultRateLimit   = 100
	defaultBurst       = 200
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - where the chain is kept
type DatabaseType struct {
	Type      string `gluamapper:"type" json:"type"`
	Directory string `gluamapper:"directory" json:"directory"`
}

// PeeringType - how the node finds and talks to other nodes
//
// times are in seconds, a zero resolve interval disables periodic
// conflict resolution
type PeeringType struct {
	Bootstrap       []string `gluamapper:"bootstrap" json:"bootstrap"`
	NodesDomain     string   `gluamapper:"nodes_domain" json:"nodes_domain"`
	Timeout         int      `gluamapper:"timeout" json:"timeout"`
	ResolveInterval int      `gluamapper:"resolve_interval" json:"resolve_interval"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string   `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string   `gluamapper:"pidfile" json:"pidfile"`
	NodeName      string   `gluamapper:"node_name" json:"node_name"`
	PublicURL     string   `gluamapper:"public_url" json:"public_url"`
	Validators    []string `gluamapper:"validators" json:"validators"`

	// either a hex key or a passphrase with a hex salt
	EncryptionKey string `gluamapper:"encryption_key" json:"-"`
	Passphrase    string `gluamapper:"passphrase" json:"-"`
	Salt          string `gluamapper:"salt" json:"salt"`

	Database DatabaseType         `gluamapper:"database" json:"database"`
	Uploads  string               `gluamapper:"uploads" json:"uploads"`
	Peering  PeeringType          `gluamapper:"peering" json:"peering"`
	RPC      rpc.Configuration    `gluamapper:"rpc" json:"rpc"`
	Logging  logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Type:      storage.TypeFile,
			Directory: defaultDatabaseDirectory,
		},

		Uploads: defaultUploadsDirectory,

		Peering: PeeringType{
			Timeout: defaultPeerTimeout,
		},

		RPC: rpc.Configuration{
			RateLimit: defaultRateLimit,
			Burst:     defaultBurst,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	options.NodeName = strings.TrimSpace(options.NodeName)
	if "" == options.NodeName {
		return nil, fault.MissingNodeName
	}
	if !document.ValidDocumentID(options.NodeName) {
		return nil, fmt.Errorf("%w: node_name: %q", fault.ConfigurationFailed, options.NodeName)
	}

	options.PublicURL = announce.Normalise(options.PublicURL)
	if err := announce.CheckURL(options.PublicURL); nil != err {
		return nil, fmt.Errorf("%w: public_url: %q", fault.InvalidPublicURL, options.PublicURL)
	}

	// a node must be able to anchor its own uploads
	if !block.NewValidators(options.Validators...).Contains(options.NodeName) {
		return nil, fmt.Errorf("%w: node_name: %q is not in validators", fault.ConfigurationFailed, options.NodeName)
	}

	options.Database.Type = strings.ToLower(options.Database.Type)
	switch options.Database.Type {
	case storage.TypeFile, storage.TypeLevelDB:
	default:
		return nil, fmt.Errorf("%w: %q", fault.UnsupportedDatabaseType, options.Database.Type)
	}

	if options.Peering.Timeout <= 0 {
		options.Peering.Timeout = defaultPeerTimeout
	}
	if options.Peering.ResolveInterval < 0 {
		options.Peering.ResolveInterval = 0
	}
	if "" != options.RPC.Certificate && "" == options.RPC.PrivateKey {
		options.RPC.PrivateKey = defaultKeyFile
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.RPC.Certificate,
		&options.RPC.PrivateKey,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// one directory per node holds its chain and its uploads
	options.Database.Directory = filepath.Join(options.Database.Directory, options.NodeName)
	options.Uploads = util.EnsureAbsolute(options.Database.Directory, options.Uploads)

	// the log file must be a plain name
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("Files: %q is not plain name", options.Logging.File)
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// key used to wrap stored file paths, there is no default
func encryptionKey(options *Configuration) (confidential.Key, error) {
	if "" != options.EncryptionKey {
		return confidential.ParseKey(strings.TrimSpace(options.EncryptionKey))
	}

	salt, err := hex.DecodeString(strings.TrimSpace(options.Salt))
	if nil != err {
		return confidential.Key{}, fmt.Errorf("%w: salt: %s", fault.InvalidKey, err)
	}
	return confidential.DeriveKey(options.Passphrase, salt)
}

// peer request timeout
func (options *Configuration) timeout() time.Duration {
	return time.Duration(options.Peering.Timeout) * time.Second
}

// conflict resolution interval, zero when disabled
func (options *Configuration) resolveInterval() time.Duration {
	return time.Duration(options.Peering.ResolveInterval) * time.Second
}
