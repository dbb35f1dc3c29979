// ABOUTME: Tests for role profile lookup and the derived tool surface.

package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_KnownRoles(t *testing.T) {
	assert.Equal(t, "boss", Get("boss").Name)
	assert.Equal(t, "expert", Get("expert").Name)
	assert.Equal(t, "boss", Get("BOSS").Name)
}

func TestGet_UnknownFallsBackToGeneric(t *testing.T) {
	for _, name := range []string{"", "generic", "ceo", "consultant"} {
		assert.Equal(t, "human", Get(name).Name, "role %q", name)
	}
}

func TestToolNames(t *testing.T) {
	p := Get("boss")
	assert.Equal(t, "ask_the_boss_on_slack", p.AskToolName())
	assert.Equal(t, "clarify_with_the_boss_on_slack", p.ClarifyToolName())
	assert.Equal(t, "acknowledge_the_boss_on_slack", p.AcknowledgeToolName())

	g := Get("unknown")
	assert.Equal(t, "ask_the_human_on_slack", g.AskToolName())
}

func TestReplyWrapper(t *testing.T) {
	got := Get("boss").ReplyWrapper("Use staging first")
	assert.Equal(t, "The boss replied (use the tool to clarify back with the boss): Use staging first", got)
}

func TestAckConfirmation(t *testing.T) {
	assert.Equal(t, "(the boss heard you)", Get("boss").AckConfirmation())
	assert.Equal(t, "(the expert heard you)", Get("expert").AckConfirmation())
	assert.Equal(t, "(the human heard you)", Get("nobody").AckConfirmation())
}

func TestProfiles_HaveCompleteSpecs(t *testing.T) {
	for _, name := range append(Available(), "generic") {
		p := Get(name)
		for _, spec := range []ToolSpec{p.Ask, p.Clarify, p.Acknowledge} {
			assert.NotEmpty(t, spec.Title, "role %s", name)
			assert.NotEmpty(t, spec.Description, "role %s", name)
			assert.NotEmpty(t, spec.InputDescription, "role %s", name)
		}
	}
}
