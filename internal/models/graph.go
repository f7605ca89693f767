// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Graph is the complete, unfiltered bookmark tree as stored. Graphs handed
// out by the read cache are shared between requests and must be treated as
// read-only; call Clone before editing one.
type Graph struct {
	Categories []Category `json:"categories"`
	Items      []Item     `json:"items"`
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Categories: append(make([]Category, 0, len(g.Categories)), g.Categories...),
		Items:      make([]Item, len(g.Items)),
	}
	for i, it := range g.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// CategoryNames maps category ids to names.
func (g *Graph) CategoryNames() map[int64]string {
	names := make(map[int64]string, len(g.Categories))
	for _, c := range g.Categories {
		names[c.ID] = c.Name
	}
	return names
}
