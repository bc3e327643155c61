// Package identity defines the two-party identity used throughout the
// application.  Exactly two members exist; every document is addressed to
// one of them, and "partner" always means the other one.
//
// Identity is resolved exactly once, when a session is created, and then
// carried on the session document.  Nothing outside this package matches
// email strings.
package identity

import (
	"errors"
	"strings"
)

// Member is one of the two people using the application.
type Member string

const (
	MemberA Member = "a"
	MemberB Member = "b"
)

var ErrUnknownMember = errors.New("unknown member value")

// Resolve maps an account email to a member.  Emails containing aHint
// (case-insensitive) belong to MemberA; every other account is MemberB.
// This is a closed two-user system, not a user directory.
func Resolve(email, aHint string) Member {
	if aHint != "" && strings.Contains(strings.ToLower(email), strings.ToLower(aHint)) {
		return MemberA
	}
	return MemberB
}

// Parse validates a stored member value, e.g. one read back from a
// session document.
func Parse(s string) (Member, error) {
	switch Member(s) {
	case MemberA, MemberB:
		return Member(s), nil
	}
	return "", ErrUnknownMember
}

// Partner returns the other member.
func (m Member) Partner() Member {
	if m == MemberA {
		return MemberB
	}
	return MemberA
}

func (m Member) String() string { return string(m) }
