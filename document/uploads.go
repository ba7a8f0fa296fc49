// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/fingerprint"
)

// MaxFileSize - largest accepted upload
const MaxFileSize = 10 * 1024 * 1024

// allowed upload content types
var allowedContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// AllowedContentType - true if uploads of this type are accepted,
// parameters such as charset are ignored
func AllowedContentType(contentType string) bool {
	t := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range allowedContentTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

// SanitiseName - replace anything outside [a-zA-Z0-9.-] with '_'
func SanitiseName(name string) string {
	name = filepath.Base(strings.Replace(name, "\\", "/", -1))
	if "." == name || "/" == name || ".." == name {
		name = "upload"
	}
	return unsafeName.ReplaceAllString(name, "_")
}

// Uploads - directory holding uploaded files
type Uploads struct {
	directory string
}

// NewUploads - create the directory if necessary
func NewUploads(directory string) (*Uploads, error) {
	if err := os.MkdirAll(directory, 0700); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.IOFailure, err)
	}
	return &Uploads{
		directory: directory,
	}, nil
}

// Directory - location of the uploads
func (u *Uploads) Directory() string {
	return u.directory
}

// Save - stream r into a uniquely named file, fingerprinting it on
// the way; the file is removed if anything fails
//
// name form: <milliseconds>-<8 hex>-<sanitised original name>
func (u *Uploads) Save(originalName string, r io.Reader, now time.Time) (string, fingerprint.Fingerprint, error) {
	random := strings.Replace(uuid.New().String(), "-", "", -1)[:8]
	name := fmt.Sprintf("%d-%s-%s", now.UnixNano()/int64(time.Millisecond), random, SanitiseName(originalName))
	path := filepath.Join(u.directory, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if nil != err {
		return "", fingerprint.Fingerprint{}, fmt.Errorf("%w: %s", fault.IOFailure, err)
	}

	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(path)
		}
	}()

	// one extra byte detects oversize uploads
	limited := &io.LimitedReader{R: r, N: MaxFileSize + 1}
	fp, err := fingerprint.FromReader(io.TeeReader(limited, f))
	if closeErr := f.Close(); nil == err && nil != closeErr {
		err = fmt.Errorf("%w: %s", fault.IOFailure, closeErr)
	}
	if nil != err {
		return "", fingerprint.Fingerprint{}, err
	}
	if limited.N <= 0 {
		return "", fingerprint.Fingerprint{}, fault.FileTooLarge
	}

	ok = true
	return path, fp, nil
}

// Remove - delete a saved upload
func (u *Uploads) Remove(path string) error {
	return os.Remove(path)
}
