package engine

import "github.com/flowbyte/agentrun/core"

// BeforeToolCallHook runs once per tool call, before execution. It may
// rewrite the call's arguments and/or the accumulated message list, e.g. to
// inject state the caller wants applied. Returning nil for either value
// keeps the current one.
type BeforeToolCallHook func(toolName string, args map[string]any, messages []core.Message) (newMessages []core.Message, newArgs map[string]any)

// AfterToolCallHook runs once per tool call, after execution. Returning
// stop=true terminates the run after the current turn's remaining tool calls
// finish, skipping further LLM turns. Used to short-circuit a
// validate-and-retry loop as soon as a tool signals success.
type AfterToolCallHook func(toolName string, args map[string]any, output any, messages []core.Message) (newMessages []core.Message, stop bool)

// AfterLLMCallHook runs once per LLM turn that produced no tool calls, i.e.
// when the state machine is about to terminate normally. Returning
// continueRun=true appends the hook's messages and loops back for another
// LLM turn, e.g. to force a model that forgot to call a required tool to try
// again. Callers must rate-limit continuation themselves; the engine's
// MaxIterations bound is the final backstop.
type AfterLLMCallHook func(messages []core.Message, lastAssistant core.Message, hasToolCalls bool) (newMessages []core.Message, continueRun bool)

// Hooks bundles the three optional extension points. A nil hook is an
// identity transform with no control-flow override. Hook authority is
// limited by signature: AfterLLMCallHook never sees tool-call internals, and
// only AfterToolCallHook can stop the run early.
type Hooks struct {
	BeforeToolCall BeforeToolCallHook
	AfterToolCall  AfterToolCallHook
	AfterLLMCall   AfterLLMCallHook
}
