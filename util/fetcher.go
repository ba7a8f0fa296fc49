// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
)

// StatusError - non-2xx response from a remote
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: %d on: %q body: %q", e.StatusCode, e.URL, e.Body)
}

// FetchJSON - fetch a JSON response from an HTTP GET request and
// decode it
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if nil != err {
		return err
	}
	return doJSON(ctx, client, request, reply)
}

// PostJSON - encode the argument, POST it and decode the JSON response
//
// reply may be nil to discard the response body
func PostJSON(ctx context.Context, client *http.Client, url string, args interface{}, reply interface{}) error {
	body, err := json.Marshal(args)
	if nil != err {
		return err
	}
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if nil != err {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	return doJSON(ctx, client, request, reply)
}

// FilePart - the file carried by a multipart request
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// PostMultipart - send fields and one file as multipart/form-data and
// decode the JSON response
func PostMultipart(ctx context.Context, client *http.Client, url string, fields map[string]string, file FilePart, reply interface{}) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := w.WriteField(k, fields[k]); nil != err {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
	h.Set("Content-Type", file.ContentType)
	part, err := w.CreatePart(h)
	if nil != err {
		return err
	}
	if _, err := io.Copy(part, file.Content); nil != err {
		return err
	}
	if err := w.Close(); nil != err {
		return err
	}

	request, err := http.NewRequest(http.MethodPost, url, body)
	if nil != err {
		return err
	}
	request.Header.Set("Content-Type", w.FormDataContentType())
	return doJSON(ctx, client, request, reply)
}

func doJSON(ctx context.Context, client *http.Client, request *http.Request, reply interface{}) error {
	response, err := client.Do(request.WithContext(ctx))
	if nil != err {
		return err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if nil != err {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &StatusError{
			URL:        request.URL.String(),
			StatusCode: response.StatusCode,
			Body:       string(body),
		}
	}
	if nil == reply {
		return nil
	}
	return json.Unmarshal(body, reply)
}
