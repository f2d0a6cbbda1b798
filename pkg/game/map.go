package game

import "fmt"

// MaxLocationNameLen bounds node names taken from oracle map hints.
const MaxLocationNameLen = 40

// MapNode is one location in the session's undirected map graph.
// Nodes are append-only; the graph never shrinks.
type MapNode struct {
	ID          string   `json:"node_id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Visited     bool     `json:"visited"`
	ConnectedTo []string `json:"connected_to"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
}

// GrowMap adds a location node from an oracle map hint. An empty hint
// is a no-op. Placement is deterministic from insertion order: node k
// sits at (k mod 5, k div 5). The new node is linked both ways to the
// current node and becomes current.
func (s *Session) GrowMap(hint MapHint) {
	if hint.Location == "" {
		return
	}

	k := len(s.MapNodes)
	name := hint.Location
	if len(name) > MaxLocationNameLen {
		name = name[:MaxLocationNameLen]
	}
	icon := hint.Icon
	if icon == "" {
		icon = "location"
	}

	node := MapNode{
		ID:          fmt.Sprintf("node_%d", k),
		Name:        name,
		Icon:        icon,
		Visited:     true,
		ConnectedTo: make([]string, 0),
		X:           k % 5,
		Y:           k / 5,
	}

	if s.CurrentNodeID != "" {
		node.ConnectedTo = append(node.ConnectedTo, s.CurrentNodeID)
		for i := range s.MapNodes {
			if s.MapNodes[i].ID != s.CurrentNodeID {
				continue
			}
			if !containsID(s.MapNodes[i].ConnectedTo, node.ID) {
				s.MapNodes[i].ConnectedTo = append(s.MapNodes[i].ConnectedTo, node.ID)
			}
		}
	}

	s.MapNodes = append(s.MapNodes, node)
	s.CurrentNodeID = node.ID
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
