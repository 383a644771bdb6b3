// Package domain contains the core business entities of the adaptive
// learning platform: students, knowledge-graph nodes, mastery records,
// branch tracking and gamification state. It represents the heart of the
// system, independent of any specific infrastructure or delivery mechanism.
//
// The mastery ledger (MasteryRecord) is the single source of truth; all
// derived state (nexus scores, review forecasts, XP and level) is
// recomputed from it by the algorithm packages underneath this one.
package domain
