package bsp

import "fmt"

// SplitEntities splits raw entity text into its top-level {...} blocks.
// Braces inside quoted strings are ignored. Keys and values are not parsed.
func SplitEntities(text string) ([]string, error) {
	var blocks []string
	depth, start := 0, -1
	quoted := false

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			quoted = !quoted
		case '{':
			if quoted {
				break
			}
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if quoted {
				break
			}
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced '}' at offset %d", i)
			}
			depth--
			if depth == 0 {
				blocks = append(blocks, text[start:i+1])
			}
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quote in entity text")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unterminated entity starting at offset %d", start)
	}
	return blocks, nil
}
