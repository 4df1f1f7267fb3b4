package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/flowbyte/agentrun/core"
	"github.com/flowbyte/agentrun/logging"
	"github.com/flowbyte/agentrun/model"
	"github.com/flowbyte/agentrun/retry"
	"github.com/flowbyte/agentrun/tool"
)

// DefaultMaxIterations bounds a run when the caller does not choose a limit.
const DefaultMaxIterations = 10

// Options configures an Engine instance.
type Options struct {
	// SystemPrompt is injected as the first message of every LLM turn. It is
	// not persisted into conversation history, so it never accumulates.
	SystemPrompt string

	// Tools are the callable capabilities exposed to the model. Names must
	// be unique.
	Tools []tool.Tool

	// Hooks are the optional lifecycle extension points.
	Hooks Hooks

	// Sink receives the ordered streaming events. Defaults to NoopSink.
	Sink EventSink

	// MaxIterations bounds the total number of turns (LLM turns plus tool
	// batches). Defaults to DefaultMaxIterations.
	MaxIterations int

	// Policy overrides backoff parameters. MaxAttempts and ShouldRetry are
	// derived from the model config and error classification when unset.
	Policy retry.Policy

	// Logger defaults to the no-op logger.
	Logger logging.Logger

	// JSONMode requests a structured JSON response; the final assistant text
	// is validated and returned in RunResult.JSON.
	JSONMode bool

	// Streaming selects the backend's streaming call path; text deltas are
	// delivered to OnToken.
	Streaming bool

	// OnToken receives raw text deltas when Streaming is enabled.
	OnToken func(string)

	// Backend overrides the config-derived backend. Used by tests.
	Backend model.Backend

	// BackupBackend overrides the backend constructed from Config.Backup on
	// escalation. Used by tests.
	BackupBackend model.Backend
}

// Engine drives the conversation state machine for one model configuration
// and tool set. An Engine is immutable after New and safe for concurrent
// runs; each run owns its private state.
type Engine struct {
	cfg           model.Config
	backend       model.Backend
	backupBackend model.Backend
	systemPrompt  string
	tools         *tool.Registry
	hooks         Hooks
	sink          EventSink
	maxIterations int
	policy        retry.Policy
	logger        logging.Logger
	jsonMode      bool
	streaming     bool
	onToken       func(string)
}

// New constructs an Engine. The provider is resolved before any network
// call; an unknown provider or an invalid config (including a backup that
// carries its own backup) fails here.
func New(cfg model.Config, optFns ...func(o *Options)) (*Engine, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Sink:          NoopSink{},
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	backend := opts.Backend
	if backend == nil {
		b, err := model.New(cfg)
		if err != nil {
			return nil, err
		}
		backend = b
	}
	if opts.BackupBackend == nil && cfg.Backup != nil && opts.Backend == nil {
		// Resolve the backup provider up front too, so escalation cannot hit
		// a configuration error mid-run.
		b, err := model.New(*cfg.Backup)
		if err != nil {
			return nil, err
		}
		opts.BackupBackend = b
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, err
	}

	policy := opts.Policy
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}
	if policy.ShouldRetry == nil {
		policy.ShouldRetry = model.Retryable
	}

	return &Engine{
		cfg:           cfg,
		backend:       backend,
		backupBackend: opts.BackupBackend,
		systemPrompt:  opts.SystemPrompt,
		tools:         registry,
		hooks:         opts.Hooks,
		sink:          opts.Sink,
		maxIterations: opts.MaxIterations,
		policy:        policy,
		logger:        opts.Logger,
		jsonMode:      opts.JSONMode,
		streaming:     opts.Streaming,
		onToken:       opts.OnToken,
	}, nil
}

// Run executes the state machine until termination and returns the
// aggregated result. Expected failures (tool errors, retry exhaustion,
// iteration limit) are reported in the result, never as a panic or error.
//
// When the primary model's retry budget is exhausted and a backup model is
// configured, the entire run is re-executed once under the backup
// configuration; a model swap can change token budgets and behavior enough
// that resuming mid-conversation is less safe than starting over.
func (e *Engine) Run(ctx context.Context, userMessage string, history []core.Message, images []string) core.RunResult {
	result, escalate := e.runWith(ctx, e.backend, e.policy, userMessage, history, images)
	if !escalate || e.cfg.Backup == nil || e.backupBackend == nil {
		return result
	}

	e.logger.Warn("engine.backup.escalate",
		"primary", e.cfg.Ref(),
		"backup", e.cfg.Backup.Ref(),
		"error", result.Error,
	)
	backupPolicy := e.policy
	backupPolicy.MaxAttempts = e.cfg.Backup.MaxRetries
	// Escalation happens at most once: the second return value is dropped.
	result, _ = e.runWith(ctx, e.backupBackend, backupPolicy, userMessage, history, images)
	return result
}

// runWith executes one full pass of the state machine against the given
// backend. The bool return requests backup escalation: it is true only when
// the run failed on an exhausted transient model error.
func (e *Engine) runWith(
	ctx context.Context,
	backend model.Backend,
	policy retry.Policy,
	userMessage string,
	history []core.Message,
	images []string,
) (core.RunResult, bool) {
	st := newRunState(history, userMessage, images)
	state := stateAgent

	for {
		switch state {
		case stateAgent:
			if err := ctx.Err(); err != nil {
				return e.failure(st, fmt.Sprintf("run cancelled: %v", err)), false
			}
			if st.iterations >= e.maxIterations {
				return e.failure(st, fmt.Sprintf("iteration limit exceeded (max_iterations=%d)", e.maxIterations)), false
			}
			st.iterations++

			e.emit(ctx, core.NewLLMStartEvent(backend.Info().Name))
			msg, err := e.invokeModel(ctx, backend, policy, st)
			if err != nil {
				e.emit(ctx, core.NewErrorEvent(err, false))
				e.logger.Error("engine.llm.failed", "model", backend.Info().Name, "error", err.Error())
				return e.failure(st, err.Error()), model.Retryable(err)
			}
			st.append(*msg)
			e.emit(ctx, core.NewLLMCompleteEvent(backend.Info().Name, msg.Thinking))
			e.logger.Debug("engine.llm.complete",
				"model", backend.Info().Name,
				"tool_calls", len(msg.ToolCalls),
				"iteration", st.iterations,
			)
			state = stateAfterLLMCheck

		case stateAfterLLMCheck:
			last := st.last()
			if last.HasToolCalls() {
				state = stateTools
				break
			}
			if e.hooks.AfterLLMCall != nil {
				msgs, continueRun := e.hooks.AfterLLMCall(st.messages, last, false)
				if msgs != nil {
					st.messages = msgs
				}
				if continueRun {
					e.logger.Debug("engine.hook.continue", "iteration", st.iterations)
					state = stateAgent
					break
				}
			}
			state = stateEnd

		case stateTools:
			if st.iterations >= e.maxIterations {
				return e.failure(st, fmt.Sprintf("iteration limit exceeded (max_iterations=%d)", e.maxIterations)), false
			}
			st.iterations++
			e.executeToolBatch(ctx, st)
			if st.stopAfterTools {
				e.logger.Debug("engine.hook.stop_after_tools", "iteration", st.iterations)
				state = stateEnd
			} else {
				state = stateAgent
			}

		case stateEnd:
			return e.finalize(st), false
		}
	}
}

// invokeModel performs one LLM turn under the retry policy. The system
// prompt is prepended fresh on every call rather than stored in history.
func (e *Engine) invokeModel(ctx context.Context, backend model.Backend, policy retry.Policy, st *runState) (*core.Message, error) {
	msgs := st.messages
	if e.systemPrompt != "" {
		msgs = append([]core.Message{core.NewSystemMessage(e.systemPrompt)}, st.messages...)
	}
	req := model.Request{
		Messages: msgs,
		JSONMode: e.jsonMode,
	}
	if e.tools.Len() > 0 {
		req.Tools = e.tools.Definitions()
	}

	var out *core.Message
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		if e.streaming {
			out, err = backend.InvokeStreaming(ctx, req, e.onToken)
		} else {
			out, err = backend.Invoke(ctx, req)
		}
		return err
	}, func(attempt int, err error, delay time.Duration) {
		e.logger.Warn("engine.llm.retry",
			"model", backend.Info().Name,
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err.Error(),
		)
		e.emit(ctx, core.NewErrorEvent(err, true))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// finalize assembles the RunResult from the terminal state. In JSON mode the
// final assistant text must parse as JSON; a parse failure is reported as a
// result-level error rather than a crash.
func (e *Engine) finalize(st *runState) core.RunResult {
	result := core.RunResult{
		ToolCalls:  st.records,
		Iterations: st.iterations,
		Usage:      st.usage,
		Success:    true,
	}
	for i := len(st.messages) - 1; i >= 0; i-- {
		if st.messages[i].Role == core.RoleAssistant {
			result.Response = st.messages[i].Content
			break
		}
	}
	if e.jsonMode {
		raw := extractJSON(result.Response)
		if !gjson.Valid(raw) {
			result.Success = false
			result.Error = "model response is not valid JSON"
			return result
		}
		result.JSON = json.RawMessage(raw)
	}
	return result
}

// failure assembles a RunResult preserving the partial progress made so far.
func (e *Engine) failure(st *runState, errMsg string) core.RunResult {
	return core.RunResult{
		ToolCalls:  st.records,
		Iterations: st.iterations,
		Usage:      st.usage,
		Success:    false,
		Error:      errMsg,
	}
}

// emit delivers one event to the sink before the surrounding step proceeds.
// Sink failures are logged and otherwise ignored; a broken consumer must not
// corrupt the run.
func (e *Engine) emit(ctx context.Context, event core.StreamingEvent) {
	if err := e.sink.OnEvent(ctx, event); err != nil {
		e.logger.Warn("engine.sink.error", "event", string(event.Type), "error", err.Error())
	}
}

// extractJSON strips a surrounding markdown code fence, which models emit
// around JSON payloads even when asked not to.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
