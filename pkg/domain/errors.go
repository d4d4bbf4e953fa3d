package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrProjectNotFound is returned when a project ID cannot be found in the store.
var ErrProjectNotFound = errors.New("project not found")

var (
	// ErrNoStartNode is returned when a graph has no START node.
	ErrNoStartNode = errors.New("no start node")

	// ErrNoPath is returned when traversal from a node does not reach a presentational node.
	ErrNoPath = errors.New("no path to a presentational node")

	// ErrInteractionClosed is returned when input arrives for a closed interaction.
	ErrInteractionClosed = errors.New("interaction closed")

	// ErrStaleNode is returned when a choice refers to a node that is no longer current.
	ErrStaleNode = errors.New("stale node")

	// ErrChoiceNotFound is returned when a choice ID does not exist on the current node.
	ErrChoiceNotFound = errors.New("choice not found")
)

var (
	// ErrNodeNotFound is returned by editing operations that reference a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSelfConnection is returned when an edge would connect a node to itself.
	ErrSelfConnection = errors.New("cannot connect a node to itself")

	// ErrConnectionNotFound is returned when a connection ID does not exist.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrProtectedGroup is returned when deleting the default group.
	ErrProtectedGroup = errors.New("group cannot be deleted")
)

// ErrSessionExists is returned when starting a session whose ID is already in use.
var ErrSessionExists = errors.New("session already exists")
