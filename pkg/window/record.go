// Package window defines the normalized window record and its wire decoding.
package window

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/snipnote/deskbridge/pkg/errs"
)

// RecordRect is the rectangle as emitted by a probe strategy.
type RecordRect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Record is the single self-describing object a window probe strategy emits.
// Required keys are pointers so that absence is distinguishable from "".
type Record struct {
	Title        *string     `json:"title"`
	ProcessName  *string     `json:"processName"`
	ProcessPath  *string     `json:"processPath"`
	ProcessID    *int        `json:"processId,omitempty"`
	WindowHandle *string     `json:"windowHandle,omitempty"`
	Rect         *RecordRect `json:"rect,omitempty"`
}

// Encode marshals a record for strategies that assemble it from several tools.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode strictly parses one record. It either returns a fully populated
// WindowInfo (Timestamp and Platform left for the caller) or an errs.Parse error.
func Decode(data []byte) (WindowInfo, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return WindowInfo{}, errs.Newf("decode", errs.CodeParse, "empty probe output")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return WindowInfo{}, errs.New("decode", errs.CodeParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return WindowInfo{}, errs.Newf("decode", errs.CodeParse, "trailing data after record")
	}

	var missing []string
	if rec.Title == nil {
		missing = append(missing, "title")
	}
	if rec.ProcessName == nil {
		missing = append(missing, "processName")
	}
	if rec.ProcessPath == nil {
		missing = append(missing, "processPath")
	}
	if len(missing) > 0 {
		return WindowInfo{}, errs.Newf("decode", errs.CodeParse, "record missing %s", strings.Join(missing, ", "))
	}

	info := WindowInfo{
		Title:       orUnknown(*rec.Title),
		ProcessName: orUnknown(*rec.ProcessName),
		ProcessPath: orUnknown(*rec.ProcessPath),
	}
	if rec.ProcessID != nil {
		if *rec.ProcessID <= 0 {
			return WindowInfo{}, errs.Newf("decode", errs.CodeParse, "invalid processId %d", *rec.ProcessID)
		}
		pid := *rec.ProcessID
		info.ProcessID = &pid
	}
	if rec.WindowHandle != nil {
		info.WindowHandle = strings.TrimSpace(*rec.WindowHandle)
	}
	if rec.Rect != nil {
		r := rec.Rect
		if r.Right < r.Left || r.Bottom < r.Top {
			return WindowInfo{}, errs.New("decode", errs.CodeParse,
				fmt.Errorf("inverted rect %d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom))
		}
		rect := NewRect(r.Left, r.Top, r.Right, r.Bottom)
		info.WindowRect = &rect
	}
	return info, nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}

// String returns a pointer to s, for building records.
func String(s string) *string { return &s }
