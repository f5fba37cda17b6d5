package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxMentionBytes caps how much of a mentioned file gets inlined.
const maxMentionBytes = 100_000

var mentionPattern = regexp.MustCompile(`@([\w\-./~]+\.\w+)`)

// expandFileMentions inlines @path.ext mentions as an ATTACHED FILES
// block appended to the message. Unreadable, oversized, and binary
// files become a note in the block instead of content.
func expandFileMentions(message string, warn io.Writer) string {
	matches := mentionPattern.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return message
	}

	var sections []string
	for _, m := range matches {
		sections = append(sections, mentionSection(m[1], warn))
	}

	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\nATTACHED FILES\n")
	b.WriteString(strings.Repeat("=", 80))
	for _, section := range sections {
		b.WriteString(section)
	}
	return b.String()
}

func mentionSection(path string, warn io.Writer) string {
	resolved := path
	if strings.HasPrefix(resolved, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			resolved = filepath.Join(home, resolved[2:])
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		fmt.Fprintf(warn, "warning: file not found: %s\n", path)
		return fmt.Sprintf("\n[File: %s]\nFile not found.\n", path)
	}
	if info.Size() > maxMentionBytes {
		fmt.Fprintf(warn, "warning: file too large: %s (>100KB)\n", path)
		return fmt.Sprintf("\n[File: %s]\nFile too large (>100KB).\n", path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		fmt.Fprintf(warn, "warning: reading %s: %v\n", path, err)
		return fmt.Sprintf("\n[File: %s]\nError reading file: %v\n", path, err)
	}
	if !utf8.Valid(data) {
		fmt.Fprintf(warn, "warning: binary file skipped: %s\n", path)
		return fmt.Sprintf("\n[File: %s]\nBinary file; content omitted.\n", path)
	}

	return fmt.Sprintf("\n[File: %s]\n```\n%s\n```\n", path, string(data))
}
