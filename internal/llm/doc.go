// Package llm provides the language model clients behind the relay, together
// with the two tasks built on them: reading bank notifications and sorting
// purchase descriptions into budget categories.
//
// OpenAI, Anthropic and Gemini are supported. Every client is wrapped with a
// rate limiter, a per-call timeout and retries for transient failures.
package llm
