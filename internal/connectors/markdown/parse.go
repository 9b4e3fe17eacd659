package markdown

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Heading is an ATX or setext heading.
type Heading struct {
	Level  int
	Text   string
	Line   int
	Anchor string
}

// Link is an inline link, image, autolink or reference definition.
type Link struct {
	Kind  string
	Text  string
	URL   string
	Title string
	Line  int
}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Language string
	Content  string
	Line     int
	Lines    int
}

// Document is a parsed markdown file.
type Document struct {
	FrontMatter []byte
	Headings    []Heading
	Links       []Link
	Code        []CodeBlock
	Words       int
}

var (
	atxHeadingRe  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:\s+(.*?))?(?:\s+#+)?\s*$`)
	setextH1Re    = regexp.MustCompile(`^ {0,3}=+\s*$`)
	setextH2Re    = regexp.MustCompile(`^ {0,3}-+\s*$`)
	fenceRe       = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})\\s*([^`\\s]*)")
	inlineLinkRe  = regexp.MustCompile(`(!?)\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"([^"]*)")?\s*\)`)
	autolinkRe    = regexp.MustCompile(`<((?:https?|ftp|mailto):[^>\s]+)>`)
	refDefRe      = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*<?(\S+?)>?(?:\s+"([^"]*)")?\s*$`)
	inlineCodeRe  = regexp.MustCompile("`[^`]*`")
	anchorStripRe = regexp.MustCompile(`[^\p{L}\p{N}\- _]`)
)

// Parse scans a markdown document line by line.
func Parse(data []byte) *Document {
	doc := &Document{}
	lines := splitLines(data)

	start := 0
	if fm, end, ok := frontMatter(lines); ok {
		doc.FrontMatter = fm
		start = end
	}

	var (
		inFence   bool
		fenceMark string
		fence     CodeBlock
		fenceBody []string
		anchors   = make(map[string]int)
	)

	for i := start; i < len(lines); i++ {
		line := lines[i]
		lineNo := i + 1

		if inFence {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, fenceMark) && strings.Trim(trimmed, fenceMark[:1]) == "" {
				fence.Content = strings.Join(fenceBody, "\n")
				fence.Lines = len(fenceBody)
				doc.Code = append(doc.Code, fence)
				inFence = false
				continue
			}
			fenceBody = append(fenceBody, line)
			continue
		}

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			inFence = true
			fenceMark = m[1]
			fence = CodeBlock{Language: m[2], Line: lineNo}
			fenceBody = nil
			continue
		}

		if m := atxHeadingRe.FindStringSubmatch(line); m != nil {
			doc.Headings = append(doc.Headings, newHeading(len(m[1]), m[2], lineNo, anchors))
			doc.Words += countWords(m[2])
			continue
		}

		if i+1 < len(lines) && strings.TrimSpace(line) != "" && !isListItem(line) {
			next := lines[i+1]
			level := 0
			if setextH1Re.MatchString(next) {
				level = 1
			} else if setextH2Re.MatchString(next) {
				level = 2
			}
			if level > 0 {
				doc.Headings = append(doc.Headings, newHeading(level, line, lineNo, anchors))
				doc.Words += countWords(line)
				i++
				continue
			}
		}

		if m := refDefRe.FindStringSubmatch(line); m != nil {
			doc.Links = append(doc.Links, Link{Kind: "reference", Text: m[1], URL: m[2], Title: m[3], Line: lineNo})
			continue
		}

		doc.Words += countWords(line)
		doc.Links = append(doc.Links, inlineLinks(line, lineNo)...)
	}

	// An unterminated fence runs to the end of the file.
	if inFence {
		fence.Content = strings.Join(fenceBody, "\n")
		fence.Lines = len(fenceBody)
		doc.Code = append(doc.Code, fence)
	}

	return doc
}

// Title is the first level-one heading, if any.
func (d *Document) Title() string {
	for _, h := range d.Headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines
}

// frontMatter returns a leading YAML block delimited by "---" lines and
// the index of the first line after it.
func frontMatter(lines []string) ([]byte, int, bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, 0, false
	}
	for i := 1; i < len(lines); i++ {
		switch strings.TrimSpace(lines[i]) {
		case "---", "...":
			return []byte(strings.Join(lines[1:i], "\n")), i + 1, true
		}
	}
	return nil, 0, false
}

func newHeading(level int, text string, line int, anchors map[string]int) Heading {
	text = strings.TrimSpace(text)
	anchor := Anchor(text)
	if n := anchors[anchor]; n > 0 {
		anchors[anchor] = n + 1
		anchor = anchor + "-" + strconv.Itoa(n)
	} else {
		anchors[anchor] = 1
	}
	return Heading{Level: level, Text: text, Line: line, Anchor: anchor}
}

// Anchor builds the fragment id GitHub assigns to a heading.
func Anchor(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = anchorStripRe.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, " ", "-")
}

func inlineLinks(line string, lineNo int) []Link {
	// Code spans never contain links.
	line = inlineCodeRe.ReplaceAllStringFunc(line, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	var links []Link
	for _, m := range inlineLinkRe.FindAllStringSubmatch(line, -1) {
		kind := "inline"
		if m[1] == "!" {
			kind = "image"
		}
		links = append(links, Link{Kind: kind, Text: m[2], URL: m[3], Title: m[4], Line: lineNo})
	}
	for _, m := range autolinkRe.FindAllStringSubmatch(line, -1) {
		links = append(links, Link{Kind: "autolink", Text: m[1], URL: m[1], Line: lineNo})
	}
	return links
}

func isListItem(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ")
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
