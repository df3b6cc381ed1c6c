// Package model defines the provider-agnostic abstraction agents use to call
// language models, plus a deterministic MockModel for tests and examples.
//
// Providers (anthropic, openai) implement Model in their own subpackages so
// agents stay decoupled from vendor SDKs.
package model
