package main

import "strings"

// GenerateSQL renders a read-only DDL view of every table node, in
// insertion order. It is a pure projection of the diagram; nothing here
// mutates state.
func GenerateSQL(d *Diagram) string {
	var b strings.Builder
	for _, n := range d.Nodes {
		if n.Type != NodeTable {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(tableDDL(n))
		b.WriteString("\n")
	}
	return b.String()
}

func tableDDL(n Node) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(sqlIdentifier(n.Label))
	b.WriteString(" (")

	var pks []string
	for _, col := range n.Columns {
		b.WriteString("\n  ")
		b.WriteString(col.Name)
		b.WriteString(" ")
		b.WriteString(col.Type)
		b.WriteString(",")
		if col.IsPk {
			pks = append(pks, col.Name)
		}
	}
	if len(pks) > 0 {
		b.WriteString("\n  PRIMARY KEY (")
		b.WriteString(strings.Join(pks, ", "))
		b.WriteString(")")
	} else if len(n.Columns) > 0 {
		// Drop the trailing comma left by the last column.
		s := b.String()
		return s[:len(s)-1] + "\n);"
	}
	b.WriteString("\n);")
	return b.String()
}

// sqlIdentifier lowercases a label and replaces whitespace runs with
// underscores: "Customer Orders" -> customer_orders.
func sqlIdentifier(label string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(label)))
	if len(fields) == 0 {
		return "unnamed"
	}
	return strings.Join(fields, "_")
}
