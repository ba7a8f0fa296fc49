// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	CorruptionError   GenericError
	CryptoError       GenericError
	ExistsError       GenericError
	InvalidBlockError GenericError
	InvalidError      GenericError
	IOError           GenericError
	NotFoundError     GenericError
	PeerError         GenericError
	ProcessError      GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyInitialised      = ExistsError("already initialised")
	ApiRequestRateLimited   = ProcessError("api request rate limited")
	ChainCorruption         = CorruptionError("stored hash does not match recomputed hash")
	ConfigurationFailed     = InvalidError("configuration failed")
	DecryptionFailure       = CryptoError("decryption failure")
	DocumentExists          = ExistsError("document id already exists")
	EmptyChain              = InvalidBlockError("chain is empty")
	FileTooLarge            = InvalidError("file too large")
	HashMismatch            = InvalidBlockError("block hash does not match contents")
	IndexMismatch           = InvalidBlockError("block index is not successor of latest")
	InvalidContentType      = InvalidError("invalid content type")
	InvalidDnsTxtResponse   = InvalidError("invalid dns txt response")
	InvalidDocumentId       = InvalidError("invalid document id")
	InvalidFingerprint      = InvalidError("invalid fingerprint")
	InvalidGenesis          = InvalidBlockError("invalid genesis block")
	InvalidKey              = CryptoError("invalid encryption key")
	InvalidLoggerChannel    = InvalidError("invalid logger channel")
	InvalidNodeDomain       = InvalidError("invalid node domain")
	InvalidNodeURL          = InvalidError("invalid node url")
	InvalidPublicURL        = InvalidError("invalid public url")
	InvalidStructPointer    = InvalidError("invalid struct pointer")
	IOFailure               = IOError("i/o failure")
	MissingEncryptionKey    = InvalidError("missing encryption key")
	MissingField            = InvalidError("missing required field")
	MissingFile             = InvalidError("missing uploaded file")
	MissingNodeName         = InvalidError("missing node name")
	PeerStatus              = PeerError("peer returned error status")
	PeerUnreachable         = PeerError("peer unreachable")
	PreviousHashMismatch    = InvalidBlockError("previous hash does not match latest block")
	SelfRegistration        = InvalidError("cannot register self")
	UnauthorisedValidator   = InvalidBlockError("validator is not authorised")
	UnsupportedDatabaseType = InvalidError("unsupported database type")
)

// the error interface methods
func (e GenericError) Error() string      { return string(e) }
func (e CorruptionError) Error() string   { return string(e) }
func (e CryptoError) Error() string       { return string(e) }
func (e ExistsError) Error() string       { return string(e) }
func (e InvalidBlockError) Error() string { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e IOError) Error() string           { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e PeerError) Error() string         { return string(e) }
func (e ProcessError) Error() string      { return string(e) }

// determine the class of an error, wrapped errors are unwrapped
func IsErrCorruption(e error) bool   { var c CorruptionError; return errors.As(e, &c) }
func IsErrCrypto(e error) bool       { var c CryptoError; return errors.As(e, &c) }
func IsErrExists(e error) bool       { var c ExistsError; return errors.As(e, &c) }
func IsErrInvalidBlock(e error) bool { var c InvalidBlockError; return errors.As(e, &c) }
func IsErrInvalid(e error) bool      { var c InvalidError; return errors.As(e, &c) }
func IsErrIO(e error) bool           { var c IOError; return errors.As(e, &c) }
func IsErrNotFound(e error) bool     { var c NotFoundError; return errors.As(e, &c) }
func IsErrPeer(e error) bool         { var c PeerError; return errors.As(e, &c) }
func IsErrProcess(e error) bool      { var c ProcessError; return errors.As(e, &c) }
