// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

var (
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
)

// check a required flag is present
func checkRequired(name string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if "" == value {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

// check a file name is present and names a regular file
func checkFileName(fileName string) (string, error) {
	fileName, err := checkRequired("file name", fileName)
	if nil != err {
		return "", err
	}
	info, err := os.Stat(fileName)
	if nil != err {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a file: %q", fileName)
	}
	return fileName, nil
}

// content type from the file extension when not given
func contentTypeOf(fileName string, given string) string {
	if "" != given {
		return given
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if t := mime.TypeByExtension(filepath.Ext(fileName)); "" != t {
		return t
	}
	return "application/octet-stream"
}

// one coloured line for a verification result
func printVerified(m *metadata, verified bool, subject string) {
	if verified {
		good.Fprintf(m.e, "VERIFIED")
	} else {
		bad.Fprintf(m.e, "NOT FOUND")
	}
	fmt.Fprintf(m.e, ": %s\n", subject)
}
