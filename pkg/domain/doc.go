/*
Package domain contains the core data model of rcflow.

It defines the dialogue flow graph (Nodes, Connections, Choices), the mutable
GameMemory that traversal reads and writes, the Project documents that group
graphs for editing and export, and the runtime Interaction state of a player
session. This package is kept pure and free of I/O and persistence concerns.

# Key Entities

  - Node: A typed vertex of the graph (Start, Dialogue, Condition, SetVariable, Event, End).
  - Payload: The sealed per-kind view of a node's data, consumed by the traversal engine.
  - Connection: A directed edge leaving a node through a named port.
  - FlowGraph: The ordered collection of nodes and connections.
  - GameMemory: Variable storage shared between the game and the flow.
  - Interaction: The runtime snapshot of a dialogue session with a player.
*/
package domain
