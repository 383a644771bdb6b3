// Package service provides the application-level orchestration over the
// learning engine: recording interactions into the mastery ledger, nexus
// score projection, branch progression, review forecasting and the
// gamification event consumer.
//
// Services compose the pure algorithm packages under internal/domain with
// the persistence interfaces in internal/store. They own retry policy for
// optimistic-concurrency conflicts and the mapping from store errors to
// service errors the API layer translates into HTTP status codes.
package service
