package rbpinspector

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// TableReplyVisitor accumulates one row per reply transaction and
// renders them as a table on Flush, for the rbpctl dump command.
type TableReplyVisitor struct {
	BaseReplyVisitor
	rows [][]string
}

func (v *TableReplyVisitor) add(kind string, txID uint16, detail string, infoCode uint8) {
	v.rows = append(v.rows, []string{
		kind,
		fmt.Sprintf("%#x", txID),
		detail,
		fmt.Sprintf("%#x", infoCode),
	})
}

func (v *TableReplyVisitor) OnBOTReply(txID uint16, infoCode uint8) {
	v.add("bot", txID, "", infoCode)
}

func (v *TableReplyVisitor) OnReadReply(txID uint16, data []uint32, infoCode uint8) {
	v.add("read", txID, fmt.Sprintf("%d words", len(data)), infoCode)
}

func (v *TableReplyVisitor) OnNIReadReply(txID uint16, data []uint32, infoCode uint8) {
	v.add("ni_read", txID, fmt.Sprintf("%d words", len(data)), infoCode)
}

func (v *TableReplyVisitor) OnWriteReply(txID uint16, infoCode uint8) {
	v.add("write", txID, "", infoCode)
}

func (v *TableReplyVisitor) OnNIWriteReply(txID uint16, infoCode uint8) {
	v.add("ni_write", txID, "", infoCode)
}

func (v *TableReplyVisitor) OnRMWSumReply(txID uint16, newValue uint32, infoCode uint8) {
	v.add("rmw_sum", txID, fmt.Sprintf("new=%#x", newValue), infoCode)
}

func (v *TableReplyVisitor) OnRMWBitsReply(txID uint16, newValue uint32, infoCode uint8) {
	v.add("rmw_bits", txID, fmt.Sprintf("new=%#x", newValue), infoCode)
}

func (v *TableReplyVisitor) OnUnknownTypeReply(txID uint16, t rbptypes.TransactionType) {
	v.add("unknown", txID, t.String(), 0)
}

// Flush renders the accumulated rows as a borderless table to w.
func (v *TableReplyVisitor) Flush(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"kind", "tx_id", "detail", "info_code"})
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

	for _, row := range v.rows {
		table.Append(row)
	}
	table.Render()
}

var _ ReplyVisitor = &TableReplyVisitor{}
