// Package pipeline turns a sparse contact into an enriched profile: it plans
// search queries, gathers and extracts evidence, optionally reranks it by
// embedding similarity, and asks a chat model for a structured answer.
package pipeline

import "github.com/rotisserie/eris"

var (
	// ErrInvalidContact rejects a contact with no name, no email, and no
	// company plus title pair.
	ErrInvalidContact = eris.New("pipeline: contact needs a name, email, or company and title")
	// ErrLLMInvocationFailed is the only stage failure that is fatal to a request.
	ErrLLMInvocationFailed = eris.New("pipeline: llm invocation failed")
	// ErrMalformedCompletion means no parse layer found a JSON object.
	ErrMalformedCompletion = eris.New("pipeline: malformed completion")
	// ErrSearchUnavailable marks a search that produced no evidence.
	ErrSearchUnavailable = eris.New("pipeline: search unavailable")
	// ErrExtractionFailed marks a page whose text could not be extracted.
	ErrExtractionFailed = eris.New("pipeline: extraction failed")
	// ErrEmbeddingFailed marks a ranking attempt that fell back to search order.
	ErrEmbeddingFailed = eris.New("pipeline: embedding failed")
)
