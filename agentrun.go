// Package agentrun orchestrates multi-turn conversations between an LLM
// backend and caller-supplied tools. Most applications interact with the
// module through the engine package:
//
//  1. Build a model.Config (directly, or via config.Load from YAML)
//  2. Register tools (tool.NewFunctionTool / NewFunctionToolFromStruct)
//  3. Create an engine.Engine with optional hooks and a streaming sink
//  4. Call Run and inspect the returned RunResult
//
// Provider adapters self-register on import; blank-import model/openai
// and/or model/anthropic to enable them:
//
//	import (
//		_ "github.com/flowbyte/agentrun/model/anthropic"
//		_ "github.com/flowbyte/agentrun/model/openai"
//	)
//
// This root package only re-exports the pieces needed for quick setup.
package agentrun

import (
	"github.com/flowbyte/agentrun/core"
	"github.com/flowbyte/agentrun/engine"
	"github.com/flowbyte/agentrun/model"
)

// Message is re-exported for convenient history construction.
type Message = core.Message

// RunResult is re-exported for result inspection.
type RunResult = core.RunResult

// NewConfig builds a model configuration from a "provider/model-name"
// reference with defaults applied.
func NewConfig(ref string) (model.Config, error) { return model.NewConfig(ref) }

// NewEngine constructs a conversation engine; see engine.New.
func NewEngine(cfg model.Config, optFns ...func(o *engine.Options)) (*engine.Engine, error) {
	return engine.New(cfg, optFns...)
}
