package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dichenko/myshadow/internal/db"
)

func symmetric(q, block uint64, v db.AnswerValue) AnsweredQuestion {
	return AnsweredQuestion{QuestionID: q, BlockID: block, PracticeID: q, Role: db.RoleNone, Value: v}
}

func role(q, block, practice uint64, r db.QuestionRole, v db.AnswerValue) AnsweredQuestion {
	return AnsweredQuestion{QuestionID: q, BlockID: block, PracticeID: practice, Role: r, Value: v}
}

func TestSymmetricYesMaybeMatches(t *testing.T) {
	user := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		symmetric(2, 10, db.AnswerNo),
	}
	partner := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerMaybe),
		symmetric(2, 10, db.AnswerYes),
	}

	matches := Compute(user, partner)

	// q1 matches on yes/maybe, q2 is excluded by the user's no
	require.Len(t, matches, 1)
	assert.Equal(t, KindRegular, matches[0].Kind)
	assert.Equal(t, uint64(1), matches[0].QuestionID)
	assert.Equal(t, db.AnswerYes, matches[0].UserValue)
	assert.Equal(t, db.AnswerMaybe, matches[0].PartnerValue)
}

func TestSymmetricNoFromEitherSideExcludes(t *testing.T) {
	user := []AnsweredQuestion{symmetric(1, 10, db.AnswerYes)}
	partner := []AnsweredQuestion{symmetric(1, 10, db.AnswerNo)}

	assert.Empty(t, Compute(user, partner))
	assert.Empty(t, Compute(partner, user))
}

func TestUnansweredQuestionIsAbsent(t *testing.T) {
	user := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		symmetric(2, 10, db.AnswerYes),
	}
	partner := []AnsweredQuestion{symmetric(1, 10, db.AnswerYes)}

	matches := Compute(user, partner)

	// q2 has no partner answer: simply absent, not a "no match" record
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(1), matches[0].QuestionID)
}

func TestRoleMatchSingleDirection(t *testing.T) {
	// user answered the giver half of practice 7, partner the taker half
	user := []AnsweredQuestion{role(3, 20, 7, db.RoleGiver, db.AnswerYes)}
	partner := []AnsweredQuestion{role(4, 20, 7, db.RoleTaker, db.AnswerMaybe)}

	matches := Compute(user, partner)

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, KindRole, m.Kind)
	assert.Equal(t, db.RoleGiver, m.UserRole)
	assert.Equal(t, db.RoleTaker, m.PartnerRole)
	assert.Equal(t, uint64(7), m.PracticeID)
	assert.Equal(t, uint64(3), m.QuestionID)
	assert.Equal(t, uint64(4), m.PartnerQuestionID)
}

func TestRoleMatchBlockedByNo(t *testing.T) {
	user := []AnsweredQuestion{role(3, 20, 7, db.RoleGiver, db.AnswerYes)}
	partner := []AnsweredQuestion{role(4, 20, 7, db.RoleTaker, db.AnswerNo)}

	assert.Empty(t, Compute(user, partner))
}

func TestRoleMatchBothDirectionsIndependently(t *testing.T) {
	// practice 7: giver question 3, taker question 4; both partners
	// answered both halves favorably, so both directions fire on four
	// distinct answers
	user := []AnsweredQuestion{
		role(3, 20, 7, db.RoleGiver, db.AnswerYes),
		role(4, 20, 7, db.RoleTaker, db.AnswerMaybe),
	}
	partner := []AnsweredQuestion{
		role(3, 20, 7, db.RoleGiver, db.AnswerYes),
		role(4, 20, 7, db.RoleTaker, db.AnswerYes),
	}

	matches := Compute(user, partner)

	require.Len(t, matches, 2)
	assert.Equal(t, db.RoleGiver, matches[0].UserRole)
	assert.Equal(t, db.RoleTaker, matches[1].UserRole)
	// each direction draws on its own pair of questions
	assert.Equal(t, uint64(3), matches[0].QuestionID)
	assert.Equal(t, uint64(4), matches[0].PartnerQuestionID)
	assert.Equal(t, uint64(4), matches[1].QuestionID)
	assert.Equal(t, uint64(3), matches[1].PartnerQuestionID)
}

func TestRoleRequiresSamePractice(t *testing.T) {
	user := []AnsweredQuestion{role(3, 20, 7, db.RoleGiver, db.AnswerYes)}
	partner := []AnsweredQuestion{role(9, 20, 8, db.RoleTaker, db.AnswerYes)}

	assert.Empty(t, Compute(user, partner))
}

func TestRoleAndSymmetricPathsAreDistinct(t *testing.T) {
	user := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		role(3, 20, 7, db.RoleGiver, db.AnswerMaybe),
	}
	partner := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		role(4, 20, 7, db.RoleTaker, db.AnswerYes),
	}

	matches := Compute(user, partner)

	require.Len(t, matches, 2)
	assert.Equal(t, KindRegular, matches[0].Kind)
	assert.Equal(t, KindRole, matches[1].Kind)
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, Compute(nil, nil))
	assert.Empty(t, Compute([]AnsweredQuestion{symmetric(1, 10, db.AnswerYes)}, nil))
}

func TestGroupByBlockPreservesOrder(t *testing.T) {
	user := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		role(3, 20, 7, db.RoleGiver, db.AnswerYes),
		symmetric(2, 10, db.AnswerMaybe),
	}
	partner := []AnsweredQuestion{
		symmetric(1, 10, db.AnswerYes),
		role(4, 20, 7, db.RoleTaker, db.AnswerYes),
		symmetric(2, 10, db.AnswerYes),
	}

	groups := GroupByBlock(Compute(user, partner))

	require.Len(t, groups, 2)
	assert.Equal(t, uint64(10), groups[0].BlockID)
	assert.Len(t, groups[0].Matches, 2)
	assert.Equal(t, uint64(20), groups[1].BlockID)
	assert.Len(t, groups[1].Matches, 1)
}
