package host

import (
	"github.com/cksruf91/a2a-server-client/internal/util"
)

// DefaultPromptTemplate instructs the model to route work to the discovered
// specialists. {{.AgentCards}} is replaced with the serialized catalog.
const DefaultPromptTemplate = `You are an expert delegator that can assign user requests to the appropriate remote agents.

For each request, rely on the remote agents listed below. Use the send_message tools to delegate the task to the agent best suited for it, then relay the agent's answer back to the user. If no agent fits, answer directly. Do not invent agents or capabilities that are not listed.

Available agents:
{{.AgentCards}}`

// renderPrompt substitutes the serialized capability catalog into the
// template. An empty template falls back to DefaultPromptTemplate.
func renderPrompt(tmpl, agentCards string) (string, error) {
	if tmpl == "" {
		tmpl = DefaultPromptTemplate
	}
	return util.RenderTemplate(tmpl, map[string]any{"AgentCards": agentCards})
}
