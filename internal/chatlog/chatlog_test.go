package chatlog_test

import (
	"testing"

	"github.com/Rrens/knowledge-drive/internal/chatlog"
	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(role domain.MessageRole, text string) domain.ChatMessage {
	return domain.ChatMessage{Role: role, Text: text}
}

func pairs(msgs []domain.ChatMessage) [][2]string {
	out := make([][2]string, len(msgs))
	for i, m := range msgs {
		out[i] = [2]string{string(m.Role), m.Text}
	}
	return out
}

func TestRoundTripV2(t *testing.T) {
	in := []domain.ChatMessage{
		msg(domain.RoleUser, "hello"),
		msg(domain.RoleModel, "hi there\nhow can I help?"),
		msg(domain.RoleUser, ""),
		msg(domain.RoleModel, "done"),
	}

	out, err := chatlog.Unmarshal(chatlog.Marshal(in))
	require.NoError(t, err)
	assert.Equal(t, pairs(in), pairs(out))
}

func TestRoundTripV2_HostileText(t *testing.T) {
	// The v2 format must survive text that corrupts the legacy format.
	in := []domain.ChatMessage{
		msg(domain.RoleUser, "---MSG_SEPARATOR---"),
		msg(domain.RoleModel, "ROLE:user\nTEXT:injected"),
		msg(domain.RoleUser, "MSG user 3"),
	}

	out, err := chatlog.Unmarshal(chatlog.Marshal(in))
	require.NoError(t, err)
	assert.Equal(t, pairs(in), pairs(out))
}

func TestRoundTripV2_FreshIDs(t *testing.T) {
	in := []domain.ChatMessage{{ID: "stable", Role: domain.RoleUser, Text: "x"}}
	out, err := chatlog.Unmarshal(chatlog.Marshal(in))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
	assert.NotEqual(t, "stable", out[0].ID)
}

func TestRoundTripLegacy(t *testing.T) {
	in := []domain.ChatMessage{
		msg(domain.RoleUser, "what is in my notes?"),
		msg(domain.RoleModel, "your notes mention\nthree things"),
	}

	out, err := chatlog.Unmarshal(chatlog.MarshalLegacy(in))
	require.NoError(t, err)
	assert.Equal(t, pairs(in), pairs(out))
}

func TestUnmarshalLegacy_OriginalFormat(t *testing.T) {
	// Verbatim shape of an artifact written by the old client.
	content := "ROLE:user\nTEXT:hello\n---MSG_SEPARATOR---\nROLE:model\nTEXT:hi, how are you?"

	out, err := chatlog.Unmarshal(content)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"user", "hello"},
		{"model", "hi, how are you?"},
	}, pairs(out))
}

func TestUnmarshalLegacy_DropsUnknownRole(t *testing.T) {
	content := "ROLE:assistant\nTEXT:nope\n---MSG_SEPARATOR---\nROLE:model\nTEXT:kept"

	out, err := chatlog.Unmarshal(content)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].Text)
}

func TestUnmarshalLegacy_DropsEmptyFragments(t *testing.T) {
	content := "---MSG_SEPARATOR---\nROLE:user\nTEXT:only one\n---MSG_SEPARATOR---"

	out, err := chatlog.Unmarshal(content)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "only one", out[0].Text)
}

func TestUnmarshalEmpty(t *testing.T) {
	out, err := chatlog.Unmarshal("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnmarshalV2_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad header", "KDLOG v2\nNOPE user 3\nabc\n"},
		{"bad role", "KDLOG v2\nMSG assistant 3\nabc\n"},
		{"bad length", "KDLOG v2\nMSG user abc\nabc\n"},
		{"truncated body", "KDLOG v2\nMSG user 50\nabc"},
		{"truncated record header", "KDLOG v2\nMSG user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chatlog.Unmarshal(tt.content)
			assert.Error(t, err)
		})
	}
}

func TestMarshalEmptyTranscript(t *testing.T) {
	out, err := chatlog.Unmarshal(chatlog.Marshal(nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}
