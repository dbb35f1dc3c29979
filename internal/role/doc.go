// Package role defines the static profiles that shape the exposed tool
// surface. A profile substitutes its noun (boss, expert, human) into the
// tool identifiers, descriptions, and reply wrapping.
package role
