// Package datauri parses and builds RFC 2397 base64 data URIs used to carry
// photos and audio clips between the UI and the model.
package datauri

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrNotDataURI  = errors.New("datauri: missing data: prefix")
	ErrNotBase64   = errors.New("datauri: only base64 payloads are supported")
	ErrMissingMIME = errors.New("datauri: missing MIME type")
	ErrEmptyData   = errors.New("datauri: empty payload")
)

// Blob is a decoded media payload.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Kind returns the top-level MIME type ("image", "audio", ...).
func (b Blob) Kind() string {
	kind, _, _ := strings.Cut(b.MIMEType, "/")
	return strings.ToLower(kind)
}

// Parse decodes "data:<mime>;base64,<payload>".
func Parse(uri string) (Blob, error) {
	uri = strings.TrimSpace(uri)
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Blob{}, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Blob{}, ErrNotBase64
	}
	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return Blob{}, ErrNotBase64
	}
	mime := strings.TrimSpace(strings.Join(params[:len(params)-1], ";"))
	if mime == "" || !strings.Contains(params[0], "/") {
		return Blob{}, ErrMissingMIME
	}
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return Blob{}, ErrNotBase64
		}
	}
	if len(data) == 0 {
		return Blob{}, ErrEmptyData
	}
	return Blob{MIMEType: mime, Data: data}, nil
}

// Encode is the inverse of Parse.
func Encode(b Blob) string {
	return "data:" + b.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}
