package utils

import "strings"

// SplitText splits text into chunks of at most chunkSize runes with overlap
// runes carried into the next chunk. Cuts prefer paragraph, line and word
// boundaries over hard rune offsets.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		end = softBoundary(runes, start, end)
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// softBoundary walks back from end to the nearest break, never past the
// midpoint of the window.
func softBoundary(runes []rune, start, end int) int {
	floor := start + (end-start)/2
	for _, sep := range []string{"\n\n", "\n", ". ", " "} {
		sepRunes := []rune(sep)
		for i := end - len(sepRunes); i > floor; i-- {
			if string(runes[i:i+len(sepRunes)]) == sep {
				return i + len(sepRunes)
			}
		}
	}
	return end
}

// SplitSections splits markdown on headings, keeping each heading with
// the body that follows it.
func SplitSections(markdown string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") && strings.TrimSpace(current.String()) != "" {
			sections = append(sections, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sections = append(sections, s)
	}
	return sections
}
