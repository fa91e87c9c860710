// Package aiservice talks to the JazzMate AI service: it triggers
// recommendation generation for a review and fetches the data-quality report
// shown on the admin dashboard.
package aiservice
