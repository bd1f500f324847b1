// Package embeddings turns text into vectors via an OpenAI-compatible API.
//
// The provider wraps langchaingo's OpenAI client, so any endpoint speaking
// the OpenAI embeddings protocol works through BaseURL. Dimension is
// detected from the model name for the common embedding models.
package embeddings
