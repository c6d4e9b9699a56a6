package workflow

import "strings"

var stepRoles = []Role{RoleReviewer, RoleCoder}

func blockMarker(role Role) string {
	return "\n" + string(role) + ":\n"
}

// renderTranscript writes the seed verbatim and every step block as
// "\n" + ROLE + ":\n" + content.
func renderTranscript(blocks []Block) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Role != RoleSeed {
			b.WriteString(blockMarker(block.Role))
		}
		b.WriteString(block.Content)
	}
	return b.String()
}

// ParseTranscript splits a rendered history back into tagged blocks. Text
// before the first marker is the seed.
//
// The format has no escaping, so parsing only inverts renderTranscript for
// content that contains no "\nREVIEWER:\n" or "\nCODER:\n" sequence. Such a
// sequence inside a block always starts a new block. Callers needing exact
// blocks should use ConversationState.Transcript instead.
func ParseTranscript(history string) []Block {
	if history == "" {
		return nil
	}

	var blocks []Block
	role := RoleSeed
	rest := history
	for {
		idx, next := nextMarker(rest)
		if idx < 0 {
			blocks = append(blocks, Block{Role: role, Content: rest})
			return blocks
		}
		if role != RoleSeed || idx > 0 {
			blocks = append(blocks, Block{Role: role, Content: rest[:idx]})
		}
		role = next
		rest = rest[idx+len(blockMarker(next)):]
	}
}

func nextMarker(s string) (int, Role) {
	best, bestRole := -1, Role("")
	for _, role := range stepRoles {
		idx := strings.Index(s, blockMarker(role))
		if idx >= 0 && (best < 0 || idx < best) {
			best, bestRole = idx, role
		}
	}
	return best, bestRole
}
