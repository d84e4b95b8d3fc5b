// Package docs extracts plain text from learner uploads so it can be
// embedded in generation prompts.
package docs

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/abhisek/eduai/internal/quiz"
)

// MaxChars bounds the text kept per upload.
const MaxChars = 12000

var (
	// ErrSkipped is returned for file types that carry no extractable text.
	ErrSkipped = errors.New("binary file skipped")

	// ErrNoText is returned when a supported file yields only whitespace.
	ErrNoText = errors.New("no text extracted")
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
}

// Extract returns the trimmed text of the named file. PDF and DOCX are
// parsed; any other file is decoded as UTF-8, or Latin-1 when it is not
// valid UTF-8. Images return ErrSkipped.
func Extract(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if imageExts[ext] {
		return "", ErrSkipped
	}

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		text, err = decodeText(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Truncate keeps at most n runes of text.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// Clip returns the documents with every text cut to MaxChars runes.
// Documents whose text is blank are dropped. dc is not modified.
func Clip(dc quiz.DocumentContext) quiz.DocumentContext {
	out := make(quiz.DocumentContext, 0, len(dc))
	for _, d := range dc {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		out = append(out, quiz.Document{Name: d.Name, Text: Truncate(text, MaxChars)})
	}
	return out
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		if i > 1 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// extractDOCX joins the <w:t> runs of word/document.xml, one line per
// paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx has no word/document.xml")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("latin-1 decode: %w", err)
	}
	return string(out), nil
}
