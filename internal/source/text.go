package source

import (
	"bytes"
	"fmt"
	"sort"

	"fortio.org/safecast"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// removeBOM strips a leading UTF-8 byte order mark.
func removeBOM(content []byte) ([]byte, bool) {
	if rest, ok := bytes.CutPrefix(content, bom); ok {
		return rest, true
	}
	return content, false
}

// normalizeCRLF turns every \r\n into \n when all line endings are CRLF.
// A lone \r is kept. Mixed endings are left as they are, since restoring
// them on write would have to guess which lines had CRLF.
func normalizeCRLF(content []byte) ([]byte, bool) {
	crlf := bytes.Count(content, []byte("\r\n"))
	if crlf == 0 || crlf != bytes.Count(content, []byte{'\n'}) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), true
}

// buildLineIndex records the offset of every '\n'.
func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, mustUint32(off))
		off++
	}
}

// toLineCol maps a byte offset to a 1-based position. A '\n' belongs to
// the line it ends.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число переводов строк строго до off
	n := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: mustUint32(n + 1), Col: off - lineIdx[n-1]}
}

func mustUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}
