package graph

import "strings"

// Canonical relationship types. The extraction side emits free-text
// descriptors ("brother", "boss"); these are the types that actually land
// on edges.
const (
	RelSiblingOf     = "sibling_of"
	RelParentOf      = "parent_of"
	RelChildOf       = "child_of"
	RelPartnerOf     = "partner_of"
	RelFriendOf      = "friend_of"
	RelManagerOf     = "manager_of"
	RelReportsTo     = "reports_to"
	RelWorksWith     = "works_with"
	RelWorksAt       = "works_at"
	RelLivesIn       = "lives_in"
	RelLivesWith     = "lives_with"
	RelNeighborOf    = "neighbor_of"
	RelCousinOf      = "cousin_of"
	RelGrandparentOf = "grandparent_of"
	RelRelativeOf    = "relative_of"
	RelKnows         = "knows"
)

// relationTypeTable maps lexical descriptors to canonical edge types.
var relationTypeTable = map[string]string{
	"brother":      RelSiblingOf,
	"brothers":     RelSiblingOf,
	"sister":       RelSiblingOf,
	"sisters":      RelSiblingOf,
	"sibling":      RelSiblingOf,
	"siblings":     RelSiblingOf,
	"mother":       RelParentOf,
	"father":       RelParentOf,
	"mom":          RelParentOf,
	"dad":          RelParentOf,
	"parent":       RelParentOf,
	"parents":      RelParentOf,
	"son":          RelChildOf,
	"daughter":     RelChildOf,
	"child":        RelChildOf,
	"kid":          RelChildOf,
	"husband":      RelPartnerOf,
	"wife":         RelPartnerOf,
	"spouse":       RelPartnerOf,
	"partner":      RelPartnerOf,
	"boyfriend":    RelPartnerOf,
	"girlfriend":   RelPartnerOf,
	"fiance":       RelPartnerOf,
	"fiancee":      RelPartnerOf,
	"friend":       RelFriendOf,
	"friends":      RelFriendOf,
	"best friend":  RelFriendOf,
	"best friends": RelFriendOf,
	"buddy":        RelFriendOf,
	"boss":         RelManagerOf,
	"manager":      RelManagerOf,
	"supervisor":   RelManagerOf,
	"employee":     RelReportsTo,
	"coworker":     RelWorksWith,
	"coworkers":    RelWorksWith,
	"colleague":    RelWorksWith,
	"colleagues":   RelWorksWith,
	"roommate":     RelLivesWith,
	"roommates":    RelLivesWith,
	"neighbor":     RelNeighborOf,
	"neighbors":    RelNeighborOf,
	"cousin":       RelCousinOf,
	"cousins":      RelCousinOf,
	"grandmother":  RelGrandparentOf,
	"grandfather":  RelGrandparentOf,
	"grandma":      RelGrandparentOf,
	"grandpa":      RelGrandparentOf,
	"uncle":        RelRelativeOf,
	"aunt":         RelRelativeOf,
	"nephew":       RelRelativeOf,
	"niece":        RelRelativeOf,
}

// directedRelationTypes holds the edge types whose direction carries
// meaning. For these, a possessive descriptor names the SOURCE of the
// relation: "my boss" is the manager, "my dad" is the parent.
var directedRelationTypes = map[string]bool{
	RelParentOf:      true,
	RelChildOf:       true,
	RelManagerOf:     true,
	RelReportsTo:     true,
	RelGrandparentOf: true,
}

// DirectedRelationType reports whether relType encodes an asymmetric
// relation, where swapping source and target changes the meaning.
func DirectedRelationType(relType string) bool {
	return directedRelationTypes[relType]
}

// NormalizeRelationType maps a free-text relation descriptor to its
// canonical edge type. Unmapped descriptors pass through unchanged (open
// vocabulary), trimmed only.
func NormalizeRelationType(text string) string {
	trimmed := strings.TrimSpace(text)
	if canonical, ok := relationTypeTable[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
