package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// SeedTestData resets the database and populates it with a demo
// catalog and one paired couple with enough answers to produce
// matches of both kinds.
//
// Behavior:
//  1. Clears answers, questions, blocks, practices and users.
//  2. Creates 3 blocks, 5 practices and a catalog of symmetric and
//     giver/taker questions.
//  3. Creates two users linked as partners and a third unpaired user
//     holding a pair code.
//  4. Answers the catalog so that both a yes/maybe symmetric match and
//     both role directions show up.
func SeedTestData(db *gorm.DB) error {
	for _, table := range []string{"answers", "questions", "blocks", "practices", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences so seeded IDs are stable.
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range []string{"answers", "questions", "blocks", "practices", "users"} {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('answers','questions','blocks','practices','users')")
	}

	log.Println("Cleared existing data")

	blocks := []Block{
		{Title: "Getting closer", Order: 1},
		{Title: "Touch", Order: 2},
		{Title: "Roleplay", Order: 3},
	}
	if err := db.Create(&blocks).Error; err != nil {
		return fmt.Errorf("failed to seed blocks: %w", err)
	}

	practices := []Practice{
		{Title: "Compliments"},
		{Title: "Massage"},
		{Title: "Blindfold"},
		{Title: "Feeding"},
		{Title: "Costumes"},
	}
	if err := db.Create(&practices).Error; err != nil {
		return fmt.Errorf("failed to seed practices: %w", err)
	}

	questions := []Question{
		// block 1: symmetric
		{BlockID: blocks[0].ID, PracticeID: practices[0].ID, Text: "Exchange compliments every day?", Order: 1, Role: RoleNone},
		{BlockID: blocks[0].ID, PracticeID: practices[3].ID, Text: "Feed each other dessert?", Order: 2, Role: RoleNone},
		// block 2: giver/taker pairs
		{BlockID: blocks[1].ID, PracticeID: practices[1].ID, Text: "Give your partner a massage?", Order: 1, Role: RoleGiver},
		{BlockID: blocks[1].ID, PracticeID: practices[1].ID, Text: "Receive a massage from your partner?", Order: 2, Role: RoleTaker},
		{BlockID: blocks[1].ID, PracticeID: practices[2].ID, Text: "Blindfold your partner?", Order: 3, Role: RoleGiver},
		{BlockID: blocks[1].ID, PracticeID: practices[2].ID, Text: "Be blindfolded by your partner?", Order: 4, Role: RoleTaker},
		// block 3: mixed
		{BlockID: blocks[2].ID, PracticeID: practices[4].ID, Text: "Dress up for your partner?", Order: 1, Role: RoleGiver},
		{BlockID: blocks[2].ID, PracticeID: practices[4].ID, Text: "Have your partner dress up for you?", Order: 2, Role: RoleTaker},
	}
	if err := db.Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}
	log.Printf("Seeded %d blocks, %d practices, %d questions", len(blocks), len(practices), len(questions))

	now := time.Now().UTC()
	alice := User{TgID: 100001, FirstName: "Alice", FirstSeenAt: now, LastSeenAt: now, Visits: 1}
	bob := User{TgID: 100002, FirstName: "Bob", FirstSeenAt: now, LastSeenAt: now, Visits: 1}
	if err := db.Create(&alice).Error; err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	if err := db.Create(&bob).Error; err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	if err := db.Model(&User{}).Where("id = ?", alice.ID).Update("partner_id", bob.ID).Error; err != nil {
		return err
	}
	if err := db.Model(&User{}).Where("id = ?", bob.ID).Update("partner_id", alice.ID).Error; err != nil {
		return err
	}

	code := "SEEDSEEDSEEDSEED"
	carol := User{TgID: 100003, FirstName: "Carol", PairCode: &code, FirstSeenAt: now, LastSeenAt: now, Visits: 1}
	if err := db.Create(&carol).Error; err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	answers := []Answer{
		// symmetric: yes/maybe match on compliments, no-block on feeding
		{UserID: alice.ID, QuestionID: questions[0].ID, Value: AnswerYes},
		{UserID: bob.ID, QuestionID: questions[0].ID, Value: AnswerMaybe},
		{UserID: alice.ID, QuestionID: questions[1].ID, Value: AnswerYes},
		{UserID: bob.ID, QuestionID: questions[1].ID, Value: AnswerNo},
		// massage: both role directions fire
		{UserID: alice.ID, QuestionID: questions[2].ID, Value: AnswerYes},
		{UserID: alice.ID, QuestionID: questions[3].ID, Value: AnswerMaybe},
		{UserID: bob.ID, QuestionID: questions[2].ID, Value: AnswerYes},
		{UserID: bob.ID, QuestionID: questions[3].ID, Value: AnswerYes},
		// blindfold: only alice-as-giver matches
		{UserID: alice.ID, QuestionID: questions[4].ID, Value: AnswerYes},
		{UserID: bob.ID, QuestionID: questions[5].ID, Value: AnswerMaybe},
	}
	if err := db.Create(&answers).Error; err != nil {
		return fmt.Errorf("failed to seed answers: %w", err)
	}
	log.Printf("Seeded %d users and %d answers", 3, len(answers))

	return nil
}
