package registry

import (
	"strings"
)

// HTMLToText flattens rendered README HTML into plain text while keeping
// the structure a reader needs:
//
//   - <pre> blocks become fenced code blocks, <code> becomes backticks
//   - <img alt="..."> emits "[alt]" so badge labels survive
//   - table cells get separated, list items get "- " markers
//   - <script>/<style> content is dropped entirely
//
// crates.io renders READMEs server-side; this is the inverse good enough
// for an LLM or terminal reader.
func HTMLToText(html string) string {
	var out strings.Builder
	var tagBuf strings.Builder
	inPre := false
	inCode := false
	skipContent := false
	inTag := false

	for _, ch := range html {
		switch {
		case ch == '<':
			inTag = true
			tagBuf.Reset()
		case ch == '>' && inTag:
			inTag = false
			tagLower := strings.ToLower(strings.TrimSpace(tagBuf.String()))
			tagName, _, _ := strings.Cut(tagLower, " ")
			switch tagName {
			case "script", "style":
				skipContent = true
			case "/script", "/style":
				skipContent = false
			case "pre":
				if !inPre {
					inPre = true
					inCode = false
					out.WriteString("\n```\n")
				}
			case "/pre":
				if inPre {
					inPre = false
					out.WriteString("\n```\n")
				}
			case "code":
				if !inPre {
					inCode = true
					out.WriteByte('`')
				}
			case "/code":
				if !inPre && inCode {
					inCode = false
					out.WriteByte('`')
				}
			case "img":
				if alt := extractAttr(tagLower, "alt"); alt != "" {
					out.WriteByte('[')
					out.WriteString(alt)
					out.WriteByte(']')
				}
			case "p", "/p", "br", "br/":
				out.WriteByte('\n')
			case "h1", "h2", "h3", "h4", "h5", "h6":
				out.WriteByte('\n')
			case "/h1", "/h2", "/h3", "/h4", "/h5", "/h6":
				out.WriteString("\n\n")
			case "li":
				out.WriteString("\n- ")
			case "td", "th":
				out.WriteString("  ")
			case "/tr":
				out.WriteByte('\n')
			}
		case inTag:
			tagBuf.WriteRune(ch)
		case !skipContent:
			out.WriteRune(ch)
		}
	}

	return collapseBlankLines(decodeHTMLEntities(out.String()))
}

// extractAttr pulls an attribute value out of a lowercased tag string,
// accepting both quote styles.
func extractAttr(tagLower, attr string) string {
	for _, quote := range []string{`"`, `'`} {
		needle := attr + "=" + quote
		start := strings.Index(tagLower, needle)
		if start < 0 {
			continue
		}
		rest := tagLower[start+len(needle):]
		if end := strings.Index(rest, quote); end >= 0 {
			return rest[:end]
		}
	}
	return ""
}

var htmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&#x27;", "'",
	"&#x2F;", "/",
	"&#x60;", "`",
	"&#x3D;", "=",
)

func decodeHTMLEntities(s string) string {
	return htmlEntityReplacer.Replace(s)
}

// collapseBlankLines caps runs of blank lines at two.
func collapseBlankLines(s string) string {
	var out strings.Builder
	blanks := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks <= 2 {
				out.WriteByte('\n')
			}
			continue
		}
		blanks = 0
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}
