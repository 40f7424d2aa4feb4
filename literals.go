package grace

import "strconv"

// decodeIntConst converts a scanned INT_CONST token's raw digits into
// its integer value. The scanner guarantees the content is all ASCII
// digits, so parsing fails only for a literal too large for 64 bits;
// such a literal decodes to 0 without an error.
func decodeIntConst(tok Token) int {
	n, err := strconv.ParseUint(string(tok.Content), 10, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

// decodeCharConst strips the surrounding quotes from a scanned
// CHAR_CONST token and resolves the escapes from spec.md §4.2.
func decodeCharConst(content []byte) byte {
	inner := content[1 : len(content)-1]
	decoded := decodeEscapes(inner)
	if len(decoded) == 0 {
		return 0
	}
	return decoded[0]
}

// decodeStringConst strips the surrounding quotes from a scanned
// STRING_CONST token and resolves its escapes, returning the raw byte
// content (the NUL terminator is added separately, at the point the
// literal is materialised, since its presence is a property of the
// derived Type, not of the literal's stored bytes).
func decodeStringConst(content []byte) []byte {
	inner := content[1 : len(content)-1]
	return decodeEscapes(inner)
}

func decodeEscapes(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '\\' || i+1 >= len(src) {
			out = append(out, c)
			continue
		}
		i++
		switch src[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		case '\\':
			out = append(out, '\\')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		case 'x':
			if i+2 < len(src) {
				v, err := strconv.ParseUint(string(src[i+1:i+3]), 16, 8)
				if err == nil {
					out = append(out, byte(v))
				}
				i += 2
			}
		default:
			out = append(out, src[i])
		}
	}
	return out
}
