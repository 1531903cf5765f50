// Package extract turns uploaded documents into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/lu4p/cat/docxtxt"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrNoText      = errors.New("no extractable text in file")
	ErrTooLarge    = errors.New("document too large")
)

// MaxDocumentBytes caps the inflated size of any single part of an uploaded
// archive, and of extracted PDF text.
const MaxDocumentBytes = 20 << 20

const maxArchiveBytes = 2 * MaxDocumentBytes

const (
	kindText = "text"
	kindPDF  = "pdf"
	kindDOCX = "docx"
)

// Text extracts the text of an uploaded file. The kind is decided by content
// sniffing first, then by extension and content type.
func Text(filename, contentType string, data []byte) (string, error) {
	var (
		out string
		err error
	)
	switch detect(filename, contentType, data) {
	case kindPDF:
		out, err = fromPDF(data)
	case kindDOCX:
		out, err = fromDOCX(data)
	case kindText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrUnsupported)
		}
		out = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	return out, nil
}

func detect(filename, contentType string, data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return kindPDF
	}
	mt, _, _ := mime.ParseMediaType(contentType)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return kindPDF
	case ".docx":
		return kindDOCX
	case ".txt", ".md", ".text":
		return kindText
	}
	switch {
	case mt == "application/pdf":
		return kindPDF
	case mt == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return kindDOCX
	case strings.HasPrefix(mt, "text/"):
		return kindText
	}
	return ""
}

func fromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var b strings.Builder
	n, err := io.Copy(&b, io.LimitReader(plain, MaxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	if n > MaxDocumentBytes {
		return "", fmt.Errorf("%w: pdf text exceeds %d bytes", ErrTooLarge, MaxDocumentBytes)
	}
	return b.String(), nil
}

// fromDOCX checks the declared size of every zip entry before handing the
// archive to docxtxt. archive/zip fails reads that run past the declared size,
// so the header check also bounds what is actually inflated.
func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	var total uint64
	found := false
	for _, f := range zr.File {
		if f.UncompressedSize64 > MaxDocumentBytes {
			return "", fmt.Errorf("%w: %s inflates to %d bytes", ErrTooLarge, f.Name, f.UncompressedSize64)
		}
		total += f.UncompressedSize64
		if f.Name == "word/document.xml" {
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("read docx: word/document.xml missing")
	}
	if total > maxArchiveBytes {
		return "", fmt.Errorf("%w: archive inflates to %d bytes", ErrTooLarge, total)
	}

	out, err := docxtxt.BytesToStr(data)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	return out, nil
}
