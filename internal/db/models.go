package db

import (
	"time"
)

// AnswerValue is the only shape an answer can take.
type AnswerValue string

const (
	AnswerYes   AnswerValue = "yes"
	AnswerNo    AnswerValue = "no"
	AnswerMaybe AnswerValue = "maybe"
)

// Valid reports whether v is one of the three accepted values.
func (v AnswerValue) Valid() bool {
	switch v {
	case AnswerYes, AnswerNo, AnswerMaybe:
		return true
	}
	return false
}

// Favorable reports whether v expresses interest. Both yes and maybe
// count; only an explicit no (or silence) excludes a match.
func (v AnswerValue) Favorable() bool {
	return v == AnswerYes || v == AnswerMaybe
}

// QuestionRole tags a question as symmetric (none) or as one half of a
// complementary giver/taker pair within a practice.
type QuestionRole string

const (
	RoleNone  QuestionRole = "none"
	RoleGiver QuestionRole = "giver"
	RoleTaker QuestionRole = "taker"
)

func (r QuestionRole) Valid() bool {
	switch r {
	case RoleNone, RoleGiver, RoleTaker:
		return true
	}
	return false
}

// User table.
//
// PartnerID and PairCode are mutually exclusive: a paired user holds no
// code, an unpaired user may hold one. Both sides of a pairing point at
// each other and are always updated inside one transaction.
type User struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	TgID        int64   `gorm:"uniqueIndex;not null"`
	FirstName   string  `gorm:"size:64"`
	LastName    string  `gorm:"size:64"`
	PartnerID   *uint64 `gorm:"index"`
	PairCode    *string `gorm:"uniqueIndex;size:16"`
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	// Visits counts distinct visits, incremented at most once per
	// rolling hour (gated on LastSeenAt).
	Visits    int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Block is an ordered group of questions, the unit of progress in the
// Mini App.
type Block struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"size:128;not null"`
	Order     int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Practice is a topical grouping; giver and taker questions on the same
// practice form one complementary desire.
type Practice struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Question struct {
	ID         uint64       `gorm:"primaryKey;autoIncrement"`
	BlockID    uint64       `gorm:"not null;index"`
	PracticeID uint64       `gorm:"not null;index"`
	Text       string       `gorm:"type:text;not null"`
	Order      int          `gorm:"column:sort_order;not null;default:0"`
	Role       QuestionRole `gorm:"size:16;not null;default:'none'"`
	CreatedAt  time.Time    `gorm:"autoCreateTime"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime"`
}

// Answer records one user's response to one question.
//
// Composite PK (UserID, QuestionID) gives the overwrite guarantee: a
// repeat submission updates the row instead of creating a duplicate.
type Answer struct {
	UserID     uint64      `gorm:"primaryKey"`
	QuestionID uint64      `gorm:"primaryKey;index"`
	Value      AnswerValue `gorm:"size:8;not null"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime"`
}
