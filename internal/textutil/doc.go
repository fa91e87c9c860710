// Package textutil holds the small text helpers shared by the CLI renderers
// and the critic matcher.
//
// The primary use cases are:
//   - Term vectors and cosine similarity for comparing review prose
//   - Display labels (title casing, percentages, truncation, sparklines)
//   - Filesystem-safe tokens
//
// Tokenization is Unicode aware so Korean critic summaries and English user
// reviews can share one vocabulary.
package textutil
