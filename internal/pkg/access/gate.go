package access

import "strings"

// EmailSet is a case-insensitive set of e-mail addresses.
type EmailSet map[string]struct{}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NewEmailSet(emails ...string) EmailSet {
	set := make(EmailSet, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func (s EmailSet) Contains(email string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[NormalizeEmail(email)]
	return ok
}

// CanAccess is true when the caller is an allow-listed founder, holds level 0,
// or holds at least requiredLevel.
func CanAccess(userLevel, requiredLevel int, founderEmails EmailSet, callerEmail string) bool {
	if founderEmails.Contains(callerEmail) {
		return true
	}
	if userLevel == LevelFundador {
		return true
	}
	return userLevel >= requiredLevel
}

// Gate owns the configured allow-lists.
type Gate struct {
	founders   EmailSet
	moderators EmailSet
}

func NewGate(founderEmails, maestroEmails []string) *Gate {
	return &Gate{
		founders:   NewEmailSet(founderEmails...),
		moderators: NewEmailSet(maestroEmails...),
	}
}

// CanAccess applies the hierarchy rule with the configured founder list.
func (g *Gate) CanAccess(userLevel, requiredLevel int, email string) bool {
	return CanAccess(userLevel, requiredLevel, g.founders, email)
}

// IsFounder reports level-0 accounts and allow-listed founder e-mails.
func (g *Gate) IsFounder(userLevel int, email string) bool {
	return userLevel == LevelFundador || g.founders.Contains(email)
}

// CanModerate reports whether the caller may act on feedback tickets and
// Tribunal content: founders and the maestro allow-list.
func (g *Gate) CanModerate(userLevel int, email string) bool {
	return g.IsFounder(userLevel, email) || g.moderators.Contains(email)
}

// VisibleLevel is the highest content level the caller may open.
func (g *Gate) VisibleLevel(userLevel int, email string) int {
	if g.IsFounder(userLevel, email) {
		return MaxLevel
	}
	return userLevel
}
