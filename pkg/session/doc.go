/*
Package session serializes access to player interactions.

A Manager pairs a ports.SessionStore with a per-session mutex (reference
counted so idle sessions hold no memory) and, optionally, a distributed lock
so several replicas can serve the same players.
*/
package session
