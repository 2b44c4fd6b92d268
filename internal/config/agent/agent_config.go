package agent

type AgentDefaults struct {
	Workspace     string  `json:"workspace"`
	Model         string  `json:"model"`
	MaxTokens     int     `json:"maxTokens"`
	Temperature   float64 `json:"temperature"`
	MaxToolIter   int     `json:"maxToolIterations"`
	HistoryWindow int     `json:"historyWindow"`
	// Profile is the agent persona file; relative paths resolve against Workspace.
	Profile string `json:"profile"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Workspace:     "~/.jarvis/workspace",
		Model:         "gemini/gemini-2.5-flash-lite",
		MaxTokens:     8192,
		Temperature:   0.7,
		MaxToolIter:   20,
		HistoryWindow: 50,
		Profile:       "AGENT.yaml",
	}
}

func DefaultAgentsConfig() AgentsConfig {
	return AgentsConfig{Defaults: defaultAgentDefaults()}
}
