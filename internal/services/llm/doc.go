// Package llm talks to an OpenRouter-compatible chat completion endpoint and
// adapts it to review.Reviser.
//
// Client.Complete retries 408, 429 and 5xx responses, network timeouts, and
// empty replies with doubling delays (1s base, 10s cap, 5 attempts unless
// overridden). Retry-After is honored. A reply cut off at the provider's
// length limit is an error unless the request allows it, since a truncated
// chunk would read as a deletion of its tail.
//
// Errors carry a services marker: ErrConfiguration for missing or rejected
// credentials, ErrTimeout, ErrCanceled, or ErrExternalTool.
package llm
