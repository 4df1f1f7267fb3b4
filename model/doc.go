// Package model defines the uniform interface the engine uses to talk to
// heterogeneous LLM backends, the provider registry that maps
// "provider/model-name" references to concrete adapters, and the closed
// error classification the retry controller branches on.
//
// Provider adapters live in subpackages (model/openai, model/anthropic) and
// register themselves with the package-level registry on import.
package model
