package chunking

import "strings"

// separators are tried in order when looking for a natural cut point.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("। "),
	[]rune(" "),
}

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1250
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split cuts text into windows of at most ChunkSize runes, preferring to end
// a window on a paragraph, line, sentence or word boundary in its second half.
// Consecutive windows share up to Overlap runes.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); {
		end := min(start+s.ChunkSize, len(runes))
		if end < len(runes) {
			if cut := lastSeparator(runes, start+s.ChunkSize/2, end); cut > 0 {
				end = cut
			}
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// lastSeparator returns the index just past the highest-priority separator
// ending inside runes[lo:hi], or -1.
func lastSeparator(runes []rune, lo, hi int) int {
	for _, sep := range separators {
		for i := hi - len(sep); i >= lo; i-- {
			if hasRunePrefix(runes[i:], sep) {
				return i + len(sep)
			}
		}
	}
	return -1
}

func hasRunePrefix(runes, prefix []rune) bool {
	if len(runes) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if runes[i] != r {
			return false
		}
	}
	return true
}
