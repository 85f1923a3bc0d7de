package drawing

// TreeNode is one entry of the drawing tree.
type TreeNode struct {
	DrawingID      string    `json:"drawingId"`
	DrawingName    string    `json:"drawingName"`
	Discipline     string    `json:"discipline"`
	LatestRevision *Revision `json:"latestRevision"`
	RevisionCount  int       `json:"revisionCount"`
}

// Label is the display label: the name alone for the site plan, otherwise
// "id_name".
func (n TreeNode) Label() string {
	if n.DrawingID == SitePlanID {
		return n.DrawingName
	}
	return n.DrawingID + "_" + n.DrawingName
}

// LatestVersion returns the latest revision's version or "".
func (n TreeNode) LatestVersion() string {
	if n.LatestRevision == nil {
		return ""
	}
	return n.LatestRevision.Version
}

// TreeSection groups the tree nodes of one discipline.
type TreeSection struct {
	Discipline string     `json:"discipline"`
	Nodes      []TreeNode `json:"nodes"`
}

// Tree is the drawing tree grouped by discipline, in display order.
type Tree []TreeSection

// Section returns the named section.
func (t Tree) Section(discipline string) (TreeSection, bool) {
	for _, s := range t {
		if s.Discipline == discipline {
			return s, true
		}
	}
	return TreeSection{}, false
}

// Node finds the node for (drawingID, discipline).
func (t Tree) Node(drawingID, discipline string) (TreeNode, bool) {
	s, ok := t.Section(discipline)
	if !ok {
		return TreeNode{}, false
	}
	for _, n := range s.Nodes {
		if n.DrawingID == drawingID {
			return n, true
		}
	}
	return TreeNode{}, false
}

// Disciplines returns the section names in order.
func (t Tree) Disciplines() []string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Discipline
	}
	return names
}

// Add appends a node to its discipline section, creating it at the end when
// missing, and returns the new tree.
func (t Tree) Add(node TreeNode) Tree {
	out := make(Tree, len(t))
	copy(out, t)
	for i := range out {
		if out[i].Discipline == node.Discipline {
			nodes := make([]TreeNode, 0, len(out[i].Nodes)+1)
			nodes = append(nodes, out[i].Nodes...)
			out[i].Nodes = append(nodes, node)
			return out
		}
	}
	return append(out, TreeSection{Discipline: node.Discipline, Nodes: []TreeNode{node}})
}

// Remove drops the node (drawingID, discipline) and any section left empty.
func (t Tree) Remove(drawingID, discipline string) Tree {
	out := make(Tree, 0, len(t))
	for _, s := range t {
		nodes := make([]TreeNode, 0, len(s.Nodes))
		for _, n := range s.Nodes {
			if n.DrawingID == drawingID && s.Discipline == discipline {
				continue
			}
			nodes = append(nodes, n)
		}
		if len(nodes) > 0 {
			out = append(out, TreeSection{Discipline: s.Discipline, Nodes: nodes})
		}
	}
	return out
}

// UpdateLatest records a new latest revision for (drawingID, discipline).
func (t Tree) UpdateLatest(drawingID, discipline string, rev Revision) Tree {
	out := make(Tree, len(t))
	for i, s := range t {
		nodes := make([]TreeNode, len(s.Nodes))
		copy(nodes, s.Nodes)
		if s.Discipline == discipline {
			for j := range nodes {
				if nodes[j].DrawingID == drawingID {
					r := rev
					nodes[j].LatestRevision = &r
					nodes[j].RevisionCount++
				}
			}
		}
		out[i] = TreeSection{Discipline: s.Discipline, Nodes: nodes}
	}
	return out
}

// BuildTree groups the drawings by discipline. The site plan is listed alone
// under AllDisciplines; sections follow the metadata discipline order and
// disciplines missing from that list are left out.
func BuildTree(m *Metadata) Tree {
	if m == nil {
		return nil
	}

	sections := map[string][]TreeNode{}

	if root, err := m.Drawing(SitePlanID); err == nil {
		sections[AllDisciplines] = []TreeNode{{
			DrawingID:   SitePlanID,
			DrawingName: root.Name,
			Discipline:  AllDisciplines,
		}}
	}

	for i := range m.Drawings {
		d := &m.Drawings[i]
		if !d.HasDisciplines() {
			continue
		}
		for j := range d.Disciplines {
			disc := &d.Disciplines[j]
			revs := FlattenRevisions(disc)
			node := TreeNode{
				DrawingID:     d.ID,
				DrawingName:   d.Name,
				Discipline:    disc.Name,
				RevisionCount: len(revs),
			}
			if len(revs) > 0 {
				latest := revs[len(revs)-1]
				node.LatestRevision = &latest
			}
			sections[disc.Name] = append(sections[disc.Name], node)
		}
	}

	order := make([]string, 0, len(m.Disciplines)+1)
	order = append(order, AllDisciplines)
	for _, info := range m.Disciplines {
		order = append(order, info.Name)
	}

	tree := make(Tree, 0, len(order))
	seen := map[string]bool{}
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		if nodes, ok := sections[name]; ok {
			tree = append(tree, TreeSection{Discipline: name, Nodes: nodes})
		}
	}
	return tree
}
