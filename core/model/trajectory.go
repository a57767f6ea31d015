package model

// Step is one simulated agent-period: the state the agent was in, the
// choice it made and the realised reward including its shock.
type Step struct {
	Agent  int     `json:"agent"`
	Period int     `json:"period"`
	State  int     `json:"state"`
	Choice int     `json:"choice"`
	Reward float64 `json:"reward"`
}
