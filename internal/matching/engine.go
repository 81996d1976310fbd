// Package matching computes mutually-favorable answers between two
// partners. It is a pure function of the two answer sets; fetching
// answers and decorating the result with block metadata belongs to the
// service layer.
package matching

import (
	"github.com/dichenko/myshadow/internal/db"
)

// AnsweredQuestion is one user's answer enriched with the question
// metadata the engine needs.
type AnsweredQuestion struct {
	QuestionID uint64
	BlockID    uint64
	PracticeID uint64
	Text       string
	Order      int
	Role       db.QuestionRole
	Value      db.AnswerValue
}

type Kind string

const (
	// KindRegular is a symmetric question both partners answered
	// favorably.
	KindRegular Kind = "regular"
	// KindRole is a complementary giver/taker pair within one practice.
	KindRole Kind = "role"
)

// Match is one question (or one direction of a practice's giver/taker
// exchange) where both partners expressed interest.
type Match struct {
	Kind       Kind
	BlockID    uint64
	PracticeID uint64
	// QuestionID is the requesting user's question. For role matches
	// PartnerQuestionID is the complementary question the partner
	// answered; for regular matches the two are equal.
	QuestionID        uint64
	PartnerQuestionID uint64
	Text              string
	Order             int
	UserValue         db.AnswerValue
	PartnerValue      db.AnswerValue
	// UserRole/PartnerRole are none for regular matches.
	UserRole    db.QuestionRole
	PartnerRole db.QuestionRole
}

// Compute joins the two answer sets and returns every match, in the
// order of the user's answers. Questions answered by only one side
// contribute nothing, and a no from either side never matches; yes and
// maybe are equally favorable.
func Compute(user, partner []AnsweredQuestion) []Match {
	byQuestion := make(map[uint64]AnsweredQuestion, len(partner))
	// role answers grouped by practice, one slot per role
	byPracticeRole := make(map[uint64]map[db.QuestionRole]AnsweredQuestion)
	for _, p := range partner {
		byQuestion[p.QuestionID] = p
		if p.Role == db.RoleGiver || p.Role == db.RoleTaker {
			slot, ok := byPracticeRole[p.PracticeID]
			if !ok {
				slot = make(map[db.QuestionRole]AnsweredQuestion, 2)
				byPracticeRole[p.PracticeID] = slot
			}
			slot[p.Role] = p
		}
	}

	var matches []Match
	for _, u := range user {
		if !u.Value.Favorable() {
			continue
		}

		switch u.Role {
		case db.RoleNone:
			p, ok := byQuestion[u.QuestionID]
			if !ok || !p.Value.Favorable() {
				continue
			}
			matches = append(matches, Match{
				Kind:              KindRegular,
				BlockID:           u.BlockID,
				PracticeID:        u.PracticeID,
				QuestionID:        u.QuestionID,
				PartnerQuestionID: u.QuestionID,
				Text:              u.Text,
				Order:             u.Order,
				UserValue:         u.Value,
				PartnerValue:      p.Value,
				UserRole:          db.RoleNone,
				PartnerRole:       db.RoleNone,
			})

		case db.RoleGiver, db.RoleTaker:
			// the partner must favor the complementary half of the
			// same practice; both directions are evaluated
			// independently as the user's own answers come up
			p, ok := byPracticeRole[u.PracticeID][complement(u.Role)]
			if !ok || !p.Value.Favorable() {
				continue
			}
			matches = append(matches, Match{
				Kind:              KindRole,
				BlockID:           u.BlockID,
				PracticeID:        u.PracticeID,
				QuestionID:        u.QuestionID,
				PartnerQuestionID: p.QuestionID,
				Text:              u.Text,
				Order:             u.Order,
				UserValue:         u.Value,
				PartnerValue:      p.Value,
				UserRole:          u.Role,
				PartnerRole:       p.Role,
			})
		}
	}
	return matches
}

func complement(r db.QuestionRole) db.QuestionRole {
	if r == db.RoleGiver {
		return db.RoleTaker
	}
	return db.RoleGiver
}

// BlockGroup collects the matches of one block for presentation.
type BlockGroup struct {
	BlockID uint64
	Matches []Match
}

// GroupByBlock splits a match list by block, preserving the order in
// which blocks first appear. Purely a view concern; the predicate
// above never looks at blocks.
func GroupByBlock(matches []Match) []BlockGroup {
	index := make(map[uint64]int)
	var groups []BlockGroup
	for _, m := range matches {
		i, ok := index[m.BlockID]
		if !ok {
			i = len(groups)
			index[m.BlockID] = i
			groups = append(groups, BlockGroup{BlockID: m.BlockID})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}
	return groups
}
