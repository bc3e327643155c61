package identity

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		email string
		hint  string
		want  Member
	}{
		{"zara@example.com", "zara", MemberA},
		{"ZARA@EXAMPLE.COM", "zara", MemberA},
		{"sami@example.com", "zara", MemberB},
		{"sami@example.com", "", MemberB},
	}
	for _, tc := range tests {
		if got := Resolve(tc.email, tc.hint); got != tc.want {
			t.Errorf("Resolve(%q, %q) = %v, want %v", tc.email, tc.hint, got, tc.want)
		}
	}
}

func TestPartnerIsInvolution(t *testing.T) {
	if MemberA.Partner() != MemberB {
		t.Errorf("MemberA.Partner() = %v, want %v", MemberA.Partner(), MemberB)
	}
	if MemberB.Partner() != MemberA {
		t.Errorf("MemberB.Partner() = %v, want %v", MemberB.Partner(), MemberA)
	}
	for _, m := range []Member{MemberA, MemberB} {
		if m.Partner().Partner() != m {
			t.Errorf("Partner is not an involution for %v", m)
		}
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("a"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := Parse("c"); err == nil {
		t.Fatalf("Parse accepted an unknown member value")
	}
}
