// Command jazzmate is the terminal client for the JazzMate music review
// service.
//
// It writes and browses listening reviews, watches a review until its track
// recommendations are generated, browses albums and critic reviews, and
// renders the admin data-quality dashboard. Every command reads
// ~/.config/jazzmate/config.toml (or --config) and talks to the configured
// backend and AI service over HTTP.
package main
