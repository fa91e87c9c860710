// Package recommend watches a review until its AI recommendations exist.
//
// The Controller fetches the review once, asks the AI service to generate
// recommendations at most once per review id, then polls on a fixed interval
// until recommendations appear or the attempt budget runs out. Results are
// delivered through a Sink; nothing is returned across the controller
// boundary.
//
// Cycles for one watch never overlap: the next poll timer is armed only after
// the previous cycle has finished. Stopping or switching reviews cancels the
// pending timer and any in-flight requests, and late responses from an
// abandoned watch are discarded.
package recommend
