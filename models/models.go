// Package models holds the demo relational schema used by the
// integration tests and the CLI seed command: tasks owned by users,
// users with profiles and addresses, and a self-referential node tree.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Task is the root model of most example queries.
type Task struct {
	ID        uint   `gorm:"primaryKey"`
	Status    string `gorm:"type:varchar(20);index"`
	Priority  int
	Urgent    bool
	Title     string         `gorm:"type:varchar(255)"`
	Attrs     datatypes.JSON `gorm:"type:jsonb"`
	Location  string         `gorm:"type:text"` // WKT geometry literal
	CreatedAt time.Time      `gorm:"autoCreateTime"`

	OwnerID *uint
	Owner   *User `gorm:"foreignKey:OwnerID"`
}

// User owns tasks and carries one profile.
type User struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"type:varchar(100)"`
	Email   string `gorm:"type:varchar(255);uniqueIndex"`
	Active  bool
	Profile *Profile `gorm:"foreignKey:UserID"`
	Tasks   []Task   `gorm:"foreignKey:OwnerID"`
}

// Profile is a one-to-one extension of a user.
type Profile struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index"`
	Bio    string

	AddressID *uint
	Address   *Address `gorm:"foreignKey:AddressID"`
}

// Address is shared leaf data for profiles.
type Address struct {
	ID   uint   `gorm:"primaryKey"`
	City string `gorm:"type:varchar(100)"`
	Zip  string `gorm:"type:varchar(20)"`
}

// Node is the self-referential model exercising per-occurrence alias
// allocation.
type Node struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:varchar(100)"`
	ParentID *uint
	Parent   *Node `gorm:"foreignKey:ParentID"`
}

func (Task) TableName() string    { return "tasks" }
func (User) TableName() string    { return "users" }
func (Profile) TableName() string { return "profiles" }
func (Address) TableName() string { return "addresses" }
func (Node) TableName() string    { return "nodes" }

// All lists every demo model in migration order.
func All() []any {
	return []any{&Address{}, &Profile{}, &User{}, &Task{}, &Node{}}
}
