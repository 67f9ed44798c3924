package document

import "strings"

type EditKind int

const (
	// replace the text of the word at Index, keeping the word itself
	EditUpdate EditKind = iota
	// add a fresh word holding Text at the end
	EditAppend
	// drop every word from Index on
	EditTruncate
)

func (k EditKind) String() string {
	switch k {
	case EditUpdate:
		return "update"
	case EditAppend:
		return "append"
	case EditTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

type Edit struct {
	Kind  EditKind
	Index int
	Text  string
}

// Tokenize splits text on runs of whitespace and drops empty tokens.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Reconcile computes the edit script that turns the current word texts into
// tokens. A truncate edit, if any, comes first; updates are only emitted for
// positions whose text differs so unchanged words keep their identity.
func Reconcile(current, tokens []string) []Edit {
	var edits []Edit
	if len(tokens) < len(current) {
		edits = append(edits, Edit{Kind: EditTruncate, Index: len(tokens)})
	}
	for i, token := range tokens {
		if i < len(current) {
			if current[i] != token {
				edits = append(edits, Edit{Kind: EditUpdate, Index: i, Text: token})
			}
			continue
		}
		edits = append(edits, Edit{Kind: EditAppend, Index: i, Text: token})
	}
	return edits
}
