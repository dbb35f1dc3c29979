// ABOUTME: Static role profiles that shape the exposed tool surface.
// ABOUTME: Each role bundles the titles and descriptions for the ask/clarify/acknowledge tools.

package role

import (
	"fmt"
	"strings"
)

// ToolSpec describes one tool as presented to the calling agent.
type ToolSpec struct {
	Title            string
	Description      string
	InputDescription string
}

// Profile is a named bundle of the three tool descriptions for one role.
// Profiles are pure static data; the noun is substituted into tool
// identifiers and into the reply wrapper shown to the agent.
type Profile struct {
	Name        string
	Ask         ToolSpec
	Clarify     ToolSpec
	Acknowledge ToolSpec
}

// AskToolName returns the identifier registered for the ask tool.
func (p Profile) AskToolName() string {
	return fmt.Sprintf("ask_the_%s_on_slack", p.Name)
}

// ClarifyToolName returns the identifier registered for the clarify tool.
func (p Profile) ClarifyToolName() string {
	return fmt.Sprintf("clarify_with_the_%s_on_slack", p.Name)
}

// AcknowledgeToolName returns the identifier registered for the acknowledge tool.
func (p Profile) AcknowledgeToolName() string {
	return fmt.Sprintf("acknowledge_the_%s_on_slack", p.Name)
}

// ReplyWrapper wraps a matched reply with an instruction telling the agent
// how to continue the exchange.
func (p Profile) ReplyWrapper(reply string) string {
	return fmt.Sprintf("The %s replied (use the tool to clarify back with the %s): %s", p.Name, p.Name, reply)
}

// AckConfirmation is the fixed text returned after a one-way acknowledgement.
func (p Profile) AckConfirmation() string {
	return fmt.Sprintf("(the %s heard you)", p.Name)
}

var boss = Profile{
	Name: "boss",
	Ask: ToolSpec{
		Title:            "Ask on Slack",
		Description:      "Ask a human boss for information that only they would know. Use for preferences, project-specific context, local env details, non-public info, doubts. If the user replies with another question, call this tool again. Only use this tool when you really need human input.",
		InputDescription: "The question to ask the human boss. Be specific and provide context.",
	},
	Clarify: ToolSpec{
		Title:            "Clarify with the boss on Slack",
		Description:      "If you called the ask_the_boss_on_slack tool but the boss did not understand your question or asked anything back, use MUST this tool to re-ask in a clearer way. Do not use this tool if you have not called ask_the_boss_on_slack before. Only use this tool when you really need human input.",
		InputDescription: "The clarification to ask the human boss. Be specific and provide context.",
	},
	Acknowledge: ToolSpec{
		Title:            "Acknowledge the boss on Slack",
		Description:      "If you called the ask_the_boss_on_slack tool and the boss replied, then you MUST use this tool to acknowledge the reply with a simple message like \"Thanks\", \"Got it\", \"Understood\", \"Ok\", \"Will do\", etc. Do not use this tool if you have not called ask_the_boss_on_slack before",
		InputDescription: "The text to tell the boss to acknowledge receiving their reply. Keep it short.",
	},
}

var expert = Profile{
	Name: "expert",
	Ask: ToolSpec{
		Title:            "Ask Expert on Slack",
		Description:      "Ask a human expert for technical details, verification, or specialized knowledge that requires expert confirmation. Use when you need to confirm expert details, validate technical information, or get expert opinion on complex matters. If the expert replies with another question, call this tool again. Only use this tool when you really need expert input.",
		InputDescription: "The question to ask the human expert. Be specific and provide technical context.",
	},
	Clarify: ToolSpec{
		Title:            "Clarify with Expert on Slack",
		Description:      "If you called the ask_the_expert_on_slack tool but the expert did not understand your question or asked anything back, use MUST this tool to re-ask in a clearer way. Do not use this tool if you have not called ask_the_expert_on_slack before. Only use this tool when you really need expert input.",
		InputDescription: "The clarification to ask the human expert. Be specific and provide technical context.",
	},
	Acknowledge: ToolSpec{
		Title:            "Acknowledge Expert on Slack",
		Description:      "If you called the ask_the_expert_on_slack tool and the expert replied, then you MUST use this tool to acknowledge the reply with a simple message like \"Thanks\", \"Got it\", \"Understood\", \"Ok\", \"Will do\", etc. Do not use this tool if you have not called ask_the_expert_on_slack before",
		InputDescription: "The text to tell the expert to acknowledge receiving their reply. Keep it short.",
	},
}

var generic = Profile{
	Name: "human",
	Ask: ToolSpec{
		Title:            "Ask Human on Slack",
		Description:      "Ask a human for information, clarification, or assistance that requires human knowledge or input. Use when you need human perspective, local information, or confirmation that only a human can provide. If the human replies with another question, call this tool again. Only use this tool when you really need human input.",
		InputDescription: "The question to ask the human. Be specific and provide context.",
	},
	Clarify: ToolSpec{
		Title:            "Clarify with Human on Slack",
		Description:      "If you called the ask_the_human_on_slack tool but the human did not understand your question or asked anything back, use MUST this tool to re-ask in a clearer way. Do not use this tool if you have not called ask_the_human_on_slack before. Only use this tool when you really need human input.",
		InputDescription: "The clarification to ask the human. Be specific and provide context.",
	},
	Acknowledge: ToolSpec{
		Title:            "Acknowledge Human on Slack",
		Description:      "If you called the ask_the_human_on_slack tool and the human replied, then you MUST use this tool to acknowledge the reply with a simple message like \"Thanks\", \"Got it\", \"Understood\", \"Ok\", \"Will do\", etc. Do not use this tool if you have not called ask_the_human_on_slack before",
		InputDescription: "The text to tell the human to acknowledge receiving their reply. Keep it short.",
	},
}

var profiles = map[string]Profile{
	"boss":   boss,
	"expert": expert,
}

// Get returns the profile for the given role name. Unknown names fall back
// to the generic profile.
func Get(name string) Profile {
	if p, ok := profiles[strings.ToLower(name)]; ok {
		return p
	}
	return generic
}

// Available lists the role names with dedicated profiles.
func Available() []string {
	return []string{"boss", "expert"}
}
