package coordinator

import (
	"github.com/pojntfx/torrenter/pkg/fstree"
	"github.com/pojntfx/torrenter/pkg/state"
)

// ToggleCommands returns one UpdateFilePriority per leaf beneath node: Default
// if enable is set, Skip otherwise.
func ToggleCommands(tree *fstree.Tree, node int, index int, enable bool) []Command {
	priority := state.FilePrioritySkip
	if enable {
		priority = state.FilePriorityDefault
	}

	ids := tree.CollectPathIDs(node)

	cmds := make([]Command, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, UpdateFilePriority{
			Index:     index,
			FileIndex: id,
			Priority:  priority,
		})
	}

	return cmds
}
