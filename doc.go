/*
Package rcflow runs branching NPC dialogue flows.

A flow is a directed graph of typed nodes (Start, Dialogue, Condition,
SetVariable, Event and End) joined by port-labelled connections. Running a
flow means walking it against a mutable key/value memory until a node the
host has to act on is reached: a Dialogue to show, an Event to trigger, or
an End.

# Layers

  - pkg/flow is the pure engine: edge resolution, condition evaluation and
    traversal. It performs no I/O.
  - internal/runtime turns traversals into player interactions.
  - Engine (this package) adds projects and persisted sessions on top.

# Usage

	eng := rcflow.New(
		rcflow.WithProjectStore(file.NewProjectStore(".rcflow/projects")),
		rcflow.WithInitialMemory(domain.GameMemory{"honor_level": 55}),
	)

	out, err := eng.StartInteraction(ctx, "proj_docks", "")
	if err != nil {
		log.Fatal(err)
	}
	for !out.Closed {
		fmt.Println(out.View.Name+":", out.View.Text)
		out, err = eng.SelectChoice(ctx, out.Interaction.SessionID, out.View.NodeID, out.View.Choices[0].ID)
		if err != nil {
			log.Fatal(err)
		}
	}

For a one-off evaluation without sessions use Engine.Traverse, or
flow.Walk directly.
*/
package rcflow
