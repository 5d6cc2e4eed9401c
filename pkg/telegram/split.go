package telegram

import "strings"

// MaxMessageLength is Telegram's text limit, counted in UTF-16 code units.
const MaxMessageLength = 4096

// SplitMessage packs the newline separated paragraphs of text into chunks of
// at most limit UTF-16 code units. Paragraphs are never split unless a single
// one exceeds the limit, so joining the chunks with "\n" restores the input.
func SplitMessage(text string, limit int) []string {
	chunks := splitChunks(text, limit)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.text
	}
	return texts
}

// chunk is one message worth of text. A partial chunk is a piece of a
// paragraph cut at the length limit, so any span crossing the cut is broken.
type chunk struct {
	text    string
	partial bool
}

func splitChunks(text string, limit int) []chunk {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var (
		chunks  []chunk
		current []string
		size    int
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, chunk{text: strings.Join(current, "\n")})
		}
		current = nil
		size = 0
	}

	for _, p := range strings.Split(text, "\n") {
		n := unitLen(p)

		if n > limit {
			flush()
			for _, piece := range hardSplit(p, limit) {
				chunks = append(chunks, chunk{text: piece, partial: true})
			}
			continue
		}

		if len(current) > 0 && size+1+n > limit {
			flush()
		}

		if len(current) > 0 {
			size++
		}
		size += n
		current = append(current, p)
	}
	flush()

	return chunks
}

// hardSplit cuts an oversized paragraph without leaving a dangling escape
// backslash at the end of a piece.
func hardSplit(p string, limit int) []string {
	var pieces []string
	rs := []rune(p)

	for len(rs) > 0 {
		cut, units := 0, 0
		for cut < len(rs) {
			w := runeUnits(rs[cut])
			if units+w > limit {
				break
			}
			units += w
			cut++
		}

		if cut < len(rs) {
			slashes := 0
			for k := cut - 1; k >= 0 && rs[k] == '\\'; k-- {
				slashes++
			}
			if slashes%2 == 1 && cut > 1 {
				cut--
			}
		}
		if cut == 0 {
			cut = 1
		}

		pieces = append(pieces, string(rs[:cut]))
		rs = rs[cut:]
	}

	return pieces
}

func unitLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
