package host

import (
	"github.com/cksruf91/a2a-server-client/a2a"
)

// PublicCard builds the card the host itself advertises: the union of every
// specialist's skills, so callers can see the full delegated capability
// surface through a single endpoint. Skill order follows the catalog order;
// duplicate skill ids across specialists are kept once, first wins.
func PublicCard(name, description, url, version string, cards []a2a.AgentCard) a2a.AgentCard {
	seen := make(map[string]struct{})
	var skills []a2a.AgentSkill
	for _, card := range cards {
		for _, skill := range card.Skills {
			if _, ok := seen[skill.ID]; ok {
				continue
			}
			seen[skill.ID] = struct{}{}
			skills = append(skills, skill)
		}
	}
	return a2a.AgentCard{
		Name:               name,
		Description:        description,
		URL:                url,
		Version:            version,
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Capabilities:       a2a.AgentCapabilities{Streaming: true},
		Skills:             skills,
	}
}
