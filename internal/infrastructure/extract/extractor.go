package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extraction is the text pulled out of a document. Degraded is set when the
// document could not be read and Text was left empty; Cause keeps the reason.
type Extraction struct {
	Text     string
	Degraded bool
	Cause    error
}

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the textual content of the file at path. Only a missing
// file is reported as an error; unreadable or unsupported documents come back
// as a degraded, empty Extraction.
func (e *Extractor) Extract(path string) (Extraction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("extract %s: %w", path, err)
	}
	if info.IsDir() {
		return Extraction{}, fmt.Errorf("extract %s: is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))

	var text string
	switch ext {
	case ".txt":
		text, err = readPlainText(path)
	case ".pdf":
		text, err = readPDF(path)
	case ".eml":
		text, err = readEML(path)
	case ".docx":
		text, err = readDOCX(path)
	case ".html", ".htm":
		text, err = readHTMLFile(path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		e.logger.Warn("Document extraction failed, continuing with empty text",
			zap.String("path", path),
			zap.String("ext", ext),
			zap.Error(err))
		return Extraction{Degraded: true, Cause: err}, nil
	}

	return Extraction{Text: text}, nil
}

// readPlainText decodes the file as UTF-8, dropping invalid byte sequences.
func readPlainText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return toValidUTF8(b), nil
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "")
}

func readPDF(path string) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return toValidUTF8(buf.Bytes()), nil
}

// readEML returns the first text/plain part of a MIME message, falling back
// to the first text/html part rendered as text.
func readEML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	mr, err := mail.CreateReader(f)
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}
	defer mr.Close()

	var htmlBody []byte
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		ct, _, _ := h.ContentType()
		switch ct {
		case "text/plain":
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return "", fmt.Errorf("read text part: %w", err)
			}
			return toValidUTF8(b), nil
		case "text/html":
			if htmlBody == nil {
				if htmlBody, err = io.ReadAll(p.Body); err != nil {
					return "", fmt.Errorf("read html part: %w", err)
				}
			}
		}
	}

	if htmlBody != nil {
		return htmlText(bytes.NewReader(htmlBody))
	}
	return "", errors.New("message has no text part")
}

func readHTMLFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return htmlText(f)
}

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, head").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return toValidUTF8([]byte(strings.Join(lines, "\n"))), nil
}
