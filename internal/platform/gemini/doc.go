// Package gemini implements the lessonplan.Generator interface using
// Google's Gemini API.
package gemini
