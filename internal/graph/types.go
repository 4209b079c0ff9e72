package graph

// NodeType is the closed set of entity kinds in the scholarly graph.
type NodeType uint8

const (
	TypeUnknown NodeType = iota
	TypePaper
	TypeMethod
	TypeDataset
	TypeTask
	TypeModel
	TypeArea
	TypeCollection
	TypeContext
)

var nodeTypeNames = [...]string{
	TypeUnknown:    "",
	TypePaper:      "paper",
	TypeMethod:     "method",
	TypeDataset:    "dataset",
	TypeTask:       "task",
	TypeModel:      "model",
	TypeArea:       "area",
	TypeCollection: "collection",
	TypeContext:    "context",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return ""
}

// ParseNodeType maps a stored type label to a NodeType. Unknown or empty
// labels return TypeUnknown, false.
func ParseNodeType(s string) (NodeType, bool) {
	for i, name := range nodeTypeNames {
		if i > 0 && name == s {
			return NodeType(i), true
		}
	}
	return TypeUnknown, false
}

// EdgeType labels a directed edge (tail -> head).
type EdgeType string

const (
	EdgeUsedInPaper  EdgeType = "used_in_paper"
	EdgeEvaluatedOn  EdgeType = "evaluated_on"
	EdgeHasTask      EdgeType = "has_task"
	EdgeHasSubtask   EdgeType = "has_subtask"
	EdgePartOf       EdgeType = "part_of"
	EdgeCites        EdgeType = "cites"
	EdgeUsedTogether EdgeType = "used_together"
)

// PaperInfo is the payload of a paper node. Zero means unknown.
type PaperInfo struct {
	Year  int
	Month int
	Day   int
}

// ModelInfo is the payload of a model node.
type ModelInfo struct {
	Evaluations []string
}

// Node is a typed graph entity. Exactly one of the payload pointers matching
// Type may be set (Paper for TypePaper, Model for TypeModel); other types
// carry only Attrs.
type Node struct {
	ID    string
	Type  NodeType
	Name  string
	Paper *PaperInfo
	Model *ModelInfo
	Attrs map[string]any
}

// Edge is a typed directed edge.
type Edge struct {
	Source string
	Target string
	Type   EdgeType
}

// Date returns a paper's (year, month). ok is false for non-papers and for
// papers missing either component.
func (n *Node) Date() (year, month int, ok bool) {
	switch n.Type {
	case TypePaper:
		if n.Paper == nil || n.Paper.Year <= 0 || n.Paper.Month <= 0 {
			return 0, 0, false
		}
		return n.Paper.Year, n.Paper.Month, true
	case TypeMethod, TypeDataset, TypeTask, TypeModel, TypeArea, TypeCollection, TypeContext, TypeUnknown:
		return 0, 0, false
	}
	return 0, 0, false
}

// IsPaper reports whether the node is a paper.
func (n *Node) IsPaper() bool { return n.Type == TypePaper }
