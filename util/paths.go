// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// EnsureAbsolute - ensure the path is absolute
// if not, prepend the directory to make absolute path
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

// EnsureFileExists - check if file exists
func EnsureFileExists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}

// WriteFileAtomic - write data to a temporary file in the same
// directory, sync it and rename it over the target
//
// a reader never observes a partially written target
func WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	f, err := ioutil.TempFile(dir, "."+filepath.Base(name)+".tmp-")
	if nil != err {
		return err
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if nil == err {
		err = f.Sync()
	}
	if closeErr := f.Close(); nil == err {
		err = closeErr
	}
	if nil == err {
		err = os.Chmod(tmp, perm)
	}
	if nil == err {
		err = os.Rename(tmp, name)
	}
	if nil != err {
		_ = os.Remove(tmp)
	}
	return err
}
