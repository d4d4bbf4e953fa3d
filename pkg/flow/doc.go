/*
Package flow implements the traversal engine of rcflow.

The engine walks a domain.FlowGraph from a starting node, executing logic
nodes (Start, Event, SetVariable, Condition) immediately and stopping at the
first presentational node (Dialogue or End). It is synchronous, pure apart
from the writes SetVariable nodes make to the caller's GameMemory, and never
returns an error: every failure collapses to "no path".

# Usage

	nodeID, ok := flow.TraverseLogic(graph, "start", memory)
	if !ok {
		// broken flow: close the interaction
	}

Walk returns the same answer together with the reason traversal stopped and
the number of nodes visited, for logging and metrics.
*/
package flow
