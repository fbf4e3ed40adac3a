// internal/types/tool.go
package types

// Tool is a capability the user can pin explicitly for the next message.
// A pinned tool overrides the intent heuristics in routing.
type Tool string

const (
	ToolNone          Tool = ""
	ToolStudy         Tool = "Study and learn"
	ToolMusic         Tool = "Create music"
	ToolThinkLonger   Tool = "Think longer"
	ToolDeepResearch  Tool = "Deep research"
	ToolWebSearch     Tool = "Web search"
	ToolMap           Tool = "Find on map"
	ToolTeamOfExperts Tool = "Team of Experts"
	ToolAutomatedTasks Tool = "Automated Tasks"
)

// ParseTool maps a wire name to a Tool. Unknown names map to ToolNone so an
// unrecognized pin degrades to heuristic routing instead of failing.
func ParseTool(name string) Tool {
	switch Tool(name) {
	case ToolStudy, ToolMusic, ToolThinkLonger, ToolDeepResearch,
		ToolWebSearch, ToolMap, ToolTeamOfExperts, ToolAutomatedTasks:
		return Tool(name)
	}
	return ToolNone
}
