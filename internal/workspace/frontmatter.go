package workspace

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileMeta is the YAML frontmatter written at the top of every exported
// workspace file.
type fileMeta struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title,omitempty"`
}

const fmDelim = "---"

// renderFile produces the on-disk form of an object: frontmatter
// followed by the markdown body and a trailing newline.
func renderFile(meta fileMeta, markdown string) ([]byte, error) {
	head, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("workspace: encode frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString(fmDelim + "\n")
	b.Write(head)
	b.WriteString(fmDelim + "\n")
	b.WriteString(markdown)
	if !strings.HasSuffix(markdown, "\n") {
		b.WriteString("\n")
	}
	return b.Bytes(), nil
}

// parseFile separates frontmatter from the markdown body. A file without
// frontmatter (or with invalid YAML) yields empty metadata and the whole
// content as body; importing never fails on malformed input.
func parseFile(data []byte) (fileMeta, string) {
	var meta fileMeta
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(fmDelim)) {
		return meta, string(data)
	}

	rest := trimmed[len(fmDelim):]
	idx := bytes.Index(rest, []byte("\n"+fmDelim))
	if idx < 0 {
		return meta, string(data)
	}

	if err := yaml.Unmarshal(rest[:idx], &meta); err != nil {
		return fileMeta{}, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(fmDelim):]), "\n\r")
	return meta, body
}
