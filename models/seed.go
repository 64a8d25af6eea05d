package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed loads a small fixture set: three users across two cities, a
// handful of tasks, and a three-level node chain.
func Seed(db *gorm.DB) error {
	ny := Address{City: "NY", Zip: "10001"}
	sf := Address{City: "SF", Zip: "94103"}
	if err := db.Create(&ny).Error; err != nil {
		return err
	}
	if err := db.Create(&sf).Error; err != nil {
		return err
	}

	alice := User{Name: "Alice", Email: "alice@example.com", Active: true}
	bob := User{Name: "Bob", Email: "bob@example.com", Active: true}
	carol := User{Name: "Carol", Email: "carol@example.com"}
	for _, u := range []*User{&alice, &bob, &carol} {
		if err := db.Create(u).Error; err != nil {
			return err
		}
	}
	profiles := []Profile{
		{UserID: alice.ID, Bio: "ops", AddressID: &ny.ID},
		{UserID: bob.ID, Bio: "dev", AddressID: &ny.ID},
		{UserID: carol.ID, Bio: "pm", AddressID: &sf.ID},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	base := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{Status: "active", Priority: 10, Title: "rotate keys", OwnerID: &alice.ID,
			Attrs: datatypes.JSON(`{"env":"prod","tags":["infra"]}`), CreatedAt: base},
		{Status: "active", Priority: 3, Title: "update docs", OwnerID: &bob.ID,
			Attrs: datatypes.JSON(`{"env":"dev"}`), CreatedAt: base.AddDate(0, 2, 0)},
		{Status: "inactive", Priority: 20, Title: "retire host", Urgent: true, OwnerID: &carol.ID,
			Attrs: datatypes.JSON(`{"env":"prod"}`), CreatedAt: base.AddDate(0, 3, 0)},
	}
	if err := db.Create(&tasks).Error; err != nil {
		return err
	}

	root := Node{Name: "B"}
	if err := db.Create(&root).Error; err != nil {
		return err
	}
	mid := Node{Name: "A", ParentID: &root.ID}
	if err := db.Create(&mid).Error; err != nil {
		return err
	}
	leaf := Node{Name: "leaf", ParentID: &mid.ID}
	return db.Create(&leaf).Error
}
