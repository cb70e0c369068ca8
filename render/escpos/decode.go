package escpos

import (
	"fmt"
	"strings"
)

// Decode renders a command stream as readable text: control sequences become
// bracketed markers, text and line feeds pass through. It is the offline
// counterpart of printing a stream file, for previews and round-trip tests.
func Decode(stream []byte) string {
	var b strings.Builder
	for i := 0; i < len(stream); {
		c := stream[i]
		switch c {
		case esc:
			if i+1 >= len(stream) {
				b.WriteString("[esc]")
				return b.String()
			}
			switch stream[i+1] {
			case '@':
				b.WriteString("[init]")
				i += 2
			case 'a':
				if i+2 >= len(stream) {
					b.WriteString("[align?]")
					return b.String()
				}
				b.WriteString("[align " + alignName(stream[i+2]) + "]")
				i += 3
			case 'E':
				if i+2 >= len(stream) {
					b.WriteString("[bold?]")
					return b.String()
				}
				if stream[i+2] == 0 {
					b.WriteString("[bold off]")
				} else {
					b.WriteString("[bold on]")
				}
				i += 3
			case '!':
				if i+2 >= len(stream) {
					b.WriteString("[font?]")
					return b.String()
				}
				fmt.Fprintf(&b, "[font 0x%02X]", stream[i+2])
				i += 3
			default:
				fmt.Fprintf(&b, "[esc 0x%02X]", stream[i+1])
				i += 2
			}
		case gs:
			if i+1 >= len(stream) {
				b.WriteString("[gs]")
				return b.String()
			}
			switch stream[i+1] {
			case '!':
				if i+2 >= len(stream) {
					b.WriteString("[size?]")
					return b.String()
				}
				n := stream[i+2]
				fmt.Fprintf(&b, "[size %dx%d]", (n>>4)+1, (n&0x0F)+1)
				i += 3
			case 'V':
				// GS V B n: feed to cut position, then cut
				if i+3 < len(stream) && stream[i+2] == 'B' {
					b.WriteString("[cut]")
					i += 4
				} else {
					b.WriteString("[cut]")
					i += 3
				}
			default:
				fmt.Fprintf(&b, "[gs 0x%02X]", stream[i+1])
				i += 2
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func alignName(n byte) string {
	switch n {
	case alignCenter:
		return "center"
	case alignRight:
		return "right"
	default:
		return "left"
	}
}
