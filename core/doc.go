// Package core contains the domain contracts shared by every planmesh
// component: the PlanningRequest and its merge rules, venue and busy-time
// value types, the Session lifecycle and the SessionStore interface, plus
// the error kinds surfaced by collaborators.
//
// Keeping these contracts in one leaf package prevents higher level packages
// (planner, dispatch, engine) from depending on each other's internals.
package core
