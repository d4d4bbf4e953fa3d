/*
Package dsl provides a fluent builder for constructing rcflow dialogue graphs in Go.

It is mostly used by tests and examples, where declaring a graph in code is
shorter and safer than writing the JSON document by hand. Declaration order is
preserved, so the first connection declared for a (node, port) pair is the one
traversal follows.

Example usage:

	b := dsl.New()

	b.Add("start").Start().Go("check")

	b.Add("check").
		Condition("honor_level", domain.OpGreaterEqual, "50").
		True("friendly").
		False("hostile")

	b.Add("friendly").
		Dialogue("Marcus", "Good to see you, friend.").
		Choice("c-bye", "Later.", "end")

	b.Add("hostile").Dialogue("Marcus", "Get lost.")
	b.Add("end").End()

	graph := b.Build()
*/
package dsl
