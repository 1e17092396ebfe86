package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ast0815/ipbus-software/internal/addrtree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the resolved address table as a table",
	RunE:  runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := buildTree(cfg)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"path", "address", "mode", "mask", "permission", "size"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	root := t.Node(t.Root())
	for _, child := range root.Children {
		appendTreeRows(table, t, child, "")
	}
	table.Render()
	return nil
}

func appendTreeRows(table *tablewriter.Table, t *addrtree.Tree, h addrtree.Handle, prefix string) {
	n := t.Node(h)
	path := n.UID
	if prefix != "" {
		path = prefix + "." + n.UID
	}

	mask := "-"
	if n.IsBitmask() {
		mask = fmt.Sprintf("0x%08x", n.Mask)
	}
	table.Append([]string{
		path,
		fmt.Sprintf("0x%08x", n.Addr),
		n.Mode.String(),
		mask,
		n.Permissions.String(),
		fmt.Sprintf("%d", n.Size),
	})

	for _, child := range n.Children {
		appendTreeRows(table, t, child, path)
	}
}
