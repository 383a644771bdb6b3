// Package lessonplan provides interfaces and types for generating
// personalized lesson plans with external AI/LLM services. It abstracts
// the details of LLM API integration (Gemini), so the HTTP layer can
// offer plan generation without coupling the engine to a specific
// external service. The engine itself never consumes plans; they are a
// read-side convenience built from engine outputs.
package lessonplan
