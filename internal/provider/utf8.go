package provider

import (
	"bytes"
	"context"
	"unicode/utf8"
)

// NewTextStream is NewCallbackStream for runtimes whose token pieces may end
// partway through a UTF-8 sequence (byte-fallback tokens). Pieces are joined
// until they end on a rune boundary, so every emitted token is valid text on
// its own and the tokens still concatenate to the generated text. Bytes of an
// unfinished rune left at the end of generation are dropped.
func NewTextStream(ctx context.Context, run func(ctx context.Context, emit EmitFunc) error) Stream {
	return NewCallbackStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		var pending bytes.Buffer
		return run(ctx, func(tok string) bool {
			pending.WriteString(tok)
			text := flushValidUTF8Prefix(&pending)
			if text == "" {
				return true
			}
			return emit(text)
		})
	})
}

// flushValidUTF8Prefix returns and consumes the longest prefix of b that does
// not end inside an incomplete rune.
func flushValidUTF8Prefix(b *bytes.Buffer) string {
	data := b.Bytes()
	if len(data) == 0 {
		return ""
	}
	prefix := validUTF8PrefixLen(data)
	if prefix == 0 {
		return ""
	}
	text := string(data[:prefix])
	b.Next(prefix)
	return text
}

func validUTF8PrefixLen(data []byte) int {
	i := 0
	prefix := 0
	for i < len(data) {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(data[i:]) {
				break
			}
			// an invalid byte is passed through; it can never complete
			i++
			prefix = i
			continue
		}
		i += size
		prefix = i
	}
	return prefix
}
