package engine

import "github.com/flowbyte/agentrun/core"

// machineState enumerates the conversation state machine's states.
type machineState int

const (
	// stateAgent performs one LLM turn.
	stateAgent machineState = iota
	// stateAfterLLMCheck decides whether to route to tools, loop, or end.
	stateAfterLLMCheck
	// stateTools executes all tool calls from the last LLM turn, in order.
	stateTools
	// stateEnd is terminal.
	stateEnd
)

// String returns the state name used in logs.
func (s machineState) String() string {
	switch s {
	case stateAgent:
		return "agent"
	case stateAfterLLMCheck:
		return "after_llm_check"
	case stateTools:
		return "tools"
	case stateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// runState is the mutable state threaded through one run. It is created per
// invocation, owned exclusively by the engine for the duration of the call,
// and never shared across concurrent runs.
type runState struct {
	messages       []core.Message
	iterations     int
	stopAfterTools bool
	usage          core.TokenUsage
	records        []core.ToolRecord
}

func newRunState(history []core.Message, userMessage string, images []string) *runState {
	st := &runState{messages: make([]core.Message, 0, len(history)+1)}
	st.messages = append(st.messages, history...)
	st.messages = append(st.messages, core.NewUserMessage(userMessage, images...))
	return st
}

// last returns the most recent message. The machine only calls this after
// at least one message exists.
func (st *runState) last() core.Message {
	return st.messages[len(st.messages)-1]
}

func (st *runState) append(msg core.Message) {
	st.messages = append(st.messages, msg)
	if msg.Usage != nil {
		st.usage.Add(*msg.Usage)
	}
}
