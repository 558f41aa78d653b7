package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// extractOffice flattens an OOXML office document (docx, pptx) into plain
// text. Word documents yield one line per paragraph; presentations yield
// slide text in slide order. Legacy binary formats are not ZIP containers
// and fail here.
func extractOffice(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("office container open: %w", err)
	}

	if text, ok, err := extractWordText(reader); err != nil {
		return "", err
	} else if ok {
		return text, nil
	}

	if text, ok, err := extractSlideText(reader); err != nil {
		return "", err
	} else if ok {
		return text, nil
	}

	return "", fmt.Errorf("office container has no readable document part")
}

// wordDocumentXML mirrors the parts of word/document.xml we care about.
type wordDocumentXML struct {
	Body struct {
		Paragraphs []wordParagraph `xml:"p"`
	} `xml:"body"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []wordText `xml:"t"`
}

type wordText struct {
	Content string `xml:",chardata"`
}

// extractWordText pulls paragraph text out of word/document.xml. ok reports
// whether the part exists; a present-but-empty document is a successful
// extraction of no text.
func extractWordText(reader *zip.Reader) (text string, ok bool, err error) {
	content, err := readZipFile(reader, "word/document.xml")
	if err != nil || content == nil {
		return "", false, err
	}

	var doc wordDocumentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", false, fmt.Errorf("word document parse: %w", err)
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, t := range run.Text {
				sb.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(sb.String()), true, nil
}

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractSlideText pulls text out of ppt/slides/slideN.xml parts in slide
// order, one blank line between slides. ok reports whether any slide part
// exists.
func extractSlideText(reader *zip.Reader) (text string, ok bool, err error) {
	type slide struct {
		num  int
		name string
	}

	var slides []slide
	for _, f := range reader.File {
		if m := slideNameRe.FindStringSubmatch(f.Name); m != nil {
			num, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{num: num, name: f.Name})
		}
	}
	if len(slides) == 0 {
		return "", false, nil
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var parts []string
	for _, s := range slides {
		content, err := readZipFile(reader, s.name)
		if err != nil {
			return "", false, err
		}
		slideText, err := slideRunText(content)
		if err != nil {
			return "", false, fmt.Errorf("slide %d parse: %w", s.num, err)
		}
		if slideText != "" {
			parts = append(parts, slideText)
		}
	}

	return strings.Join(parts, "\n\n"), true, nil
}

// slideRunText walks a slide's XML token stream collecting the text runs
// (DrawingML <a:t> elements), one line per paragraph.
func slideRunText(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "p" && sb.Len() > 0 {
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// readZipFile returns the named file's content, or nil if absent.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("office part open: %w", err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("office part read: %w", err)
		}
		return content, nil
	}
	return nil, nil
}
