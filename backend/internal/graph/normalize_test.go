package graph

import "testing"

func TestNormalizeRelationType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"brother", RelSiblingOf},
		{"brothers", RelSiblingOf},
		{"Sister", RelSiblingOf},
		{"boss", RelManagerOf},
		{"best friends", RelFriendOf},
		{"roommate", RelLivesWith},
		{"  colleague  ", RelWorksWith},
		{"mentor", "mentor"}, // unmapped descriptors pass through
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeRelationType(tc.in); got != tc.want {
			t.Errorf("NormalizeRelationType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDirectedRelationType(t *testing.T) {
	directed := []string{RelParentOf, RelChildOf, RelManagerOf, RelReportsTo, RelGrandparentOf}
	for _, relType := range directed {
		if !DirectedRelationType(relType) {
			t.Errorf("DirectedRelationType(%q) = false, want true", relType)
		}
	}

	symmetric := []string{RelSiblingOf, RelFriendOf, RelPartnerOf, RelWorksWith, RelLivesWith, "mentor"}
	for _, relType := range symmetric {
		if DirectedRelationType(relType) {
			t.Errorf("DirectedRelationType(%q) = true, want false", relType)
		}
	}
}

func TestNormalizeRelationType_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := NormalizeRelationType("brother"); got != RelSiblingOf {
			t.Fatalf("run %d: got %q", i, got)
		}
	}
}
