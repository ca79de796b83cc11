// Package chatlog serializes conversation transcripts to the text blob
// stored in the remote conversation artifact.
//
// Two formats exist. The legacy flat format delimits records with a
// sentinel token and breaks when message text contains the token itself;
// it is what pre-existing artifacts hold. The v2 format length-prefixes
// every message body so arbitrary text survives. Unmarshal accepts both
// by sniffing the header line; Marshal writes v2 unless the caller asks
// for legacy output for compatibility with older clients.
package chatlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/google/uuid"
)

const (
	headerV2 = "KDLOG v2"

	legacySeparator = "---MSG_SEPARATOR---"
)

var (
	legacyRolePattern = regexp.MustCompile(`ROLE:(user|model)`)
	legacyTextPattern = regexp.MustCompile(`(?s)TEXT:(.*)`)
)

// Marshal encodes a transcript in the v2 length-prefixed format:
//
//	KDLOG v2
//	MSG <role> <byte length of text>
//	<text>
//
// with a single newline after each text payload.
func Marshal(msgs []domain.ChatMessage) string {
	var b strings.Builder
	b.WriteString(headerV2)
	b.WriteByte('\n')
	for _, m := range msgs {
		fmt.Fprintf(&b, "MSG %s %d\n", m.Role, len(m.Text))
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalLegacy encodes a transcript in the flat sentinel format written
// by older clients. Text containing the sentinel or a ROLE: line will
// not survive a round trip; that limitation is inherent to the format.
func MarshalLegacy(msgs []domain.ChatMessage) string {
	records := make([]string, len(msgs))
	for i, m := range msgs {
		records[i] = fmt.Sprintf("ROLE:%s\nTEXT:%s", m.Role, m.Text)
	}
	return strings.Join(records, "\n"+legacySeparator+"\n")
}

// Unmarshal decodes either format, detected by the header line. Message
// ids are regenerated; they are never persisted.
func Unmarshal(content string) ([]domain.ChatMessage, error) {
	if content == "" {
		return nil, nil
	}
	if content == headerV2 || strings.HasPrefix(content, headerV2+"\n") {
		return unmarshalV2(content)
	}
	return unmarshalLegacy(content), nil
}

func unmarshalV2(content string) ([]domain.ChatMessage, error) {
	rest := strings.TrimPrefix(content, headerV2)
	rest = strings.TrimPrefix(rest, "\n")

	var msgs []domain.ChatMessage
	for len(rest) > 0 {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return nil, fmt.Errorf("chatlog: truncated record header %q", rest)
		}
		header := rest[:nl]
		rest = rest[nl+1:]

		fields := strings.Fields(header)
		if len(fields) != 3 || fields[0] != "MSG" {
			return nil, fmt.Errorf("chatlog: malformed record header %q", header)
		}
		role := domain.MessageRole(fields[1])
		if !role.Valid() {
			return nil, fmt.Errorf("chatlog: unknown role %q", fields[1])
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return nil, fmt.Errorf("chatlog: bad length in header %q", header)
		}
		if size > len(rest) {
			return nil, fmt.Errorf("chatlog: record truncated, want %d bytes, have %d", size, len(rest))
		}

		text := rest[:size]
		rest = rest[size:]
		rest = strings.TrimPrefix(rest, "\n")

		msgs = append(msgs, domain.ChatMessage{
			ID:   uuid.NewString(),
			Role: role,
			Text: text,
		})
	}
	return msgs, nil
}

// unmarshalLegacy never fails; records it cannot make sense of are
// silently dropped, which is what older clients did.
func unmarshalLegacy(content string) []domain.ChatMessage {
	var msgs []domain.ChatMessage
	for _, block := range strings.Split(content, legacySeparator) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		roleMatch := legacyRolePattern.FindStringSubmatch(block)
		textMatch := legacyTextPattern.FindStringSubmatch(block)
		if roleMatch == nil || textMatch == nil {
			continue
		}
		msgs = append(msgs, domain.ChatMessage{
			ID:   uuid.NewString(),
			Role: domain.MessageRole(roleMatch[1]),
			Text: strings.TrimSpace(textMatch[1]),
		})
	}
	return msgs
}
