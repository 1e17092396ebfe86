package commands

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ast0815/ipbus-software/internal/addrtree"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively select a register from the address table and read it",
	Long: `pick walks the resolved address table, lets the operator choose a
leaf register with an interactive list (promptui), and issues a Read
against the selection — a faster loop than typing the full dotted path.`,
	RunE: runPick,
}

// pickEntry is one selectable leaf in the address table.
type pickEntry struct {
	path string
	node *addrtree.Node
}

func runPick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := buildTree(cfg)
	if err != nil {
		return err
	}

	var entries []pickEntry
	root := t.Node(t.Root())
	for _, childHandle := range root.Children {
		collectLeaves(t, t.Node(childHandle), "", &entries)
	}
	if len(entries) == 0 {
		return fmt.Errorf("rbpctl: address table %q has no readable leaves", cfg.AddressTable.Path)
	}

	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = fmt.Sprintf("%s (0x%08x, %s)", e.path, e.node.Addr, e.node.Permissions)
	}

	prompt := promptui.Select{Label: "Select a register", Items: items, Size: 15}
	i, _, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("rbpctl: selection cancelled: %w", err)
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := c.Read(context.Background(), entries[i].path)
	if err != nil {
		return err
	}
	fmt.Printf("%s = 0x%08x\n", entries[i].path, v)
	return nil
}

// collectLeaves appends every node with no children (a concrete
// register or bitfield, not a grouping node) to out.
func collectLeaves(t *addrtree.Tree, n *addrtree.Node, prefix string, out *[]pickEntry) {
	path := n.UID
	if prefix != "" {
		path = prefix + "." + n.UID
	}
	if len(n.Children) == 0 {
		if path != "" {
			*out = append(*out, pickEntry{path: path, node: n})
		}
		return
	}
	for _, childHandle := range n.Children {
		collectLeaves(t, t.Node(childHandle), path, out)
	}
}
