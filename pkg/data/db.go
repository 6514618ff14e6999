package data

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spencer-p/sundash/pkg/geo"
)

// User is a visitor who saved a home location.
type User struct {
	gorm.Model
	Name             string
	HomeLat, HomeLng *float64
	LastSeen         time.Time
}

// Home returns the user's saved location, if there is one.
func (u *User) Home() (geo.Coordinate, bool) {
	if u == nil || u.HomeLat == nil || u.HomeLng == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: *u.HomeLat, Lng: *u.HomeLng}, true
}

// Store keeps users in Postgres.
type Store struct {
	db *gorm.DB
}

// OpenPostgres connects to the database at dsn and migrates the schema.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Touch loads the user and records that they were seen now.
func (s *Store) Touch(id uint) (*User, error) {
	var user User
	if r := s.db.First(&user, id); r.Error != nil {
		return nil, fmt.Errorf("failed to find user %d: %w", id, r.Error)
	}
	user.LastSeen = time.Now()
	if r := s.db.Save(&user); r.Error != nil {
		return nil, fmt.Errorf("failed to save user %d: %w", id, r.Error)
	}
	return &user, nil
}

// SaveHome sets the user's name and home location, creating the user when id
// is zero or unknown.
func (s *Store) SaveHome(id uint, name string, home geo.Coordinate) (*User, error) {
	var user User
	if id != 0 {
		// Read-modify-write if the user provided an ID.
		// Otherwise, one will be generated with db.Save later.
		s.db.First(&user, id)
	}
	user.Name = name
	user.HomeLat = &home.Lat
	user.HomeLng = &home.Lng
	user.LastSeen = time.Now()
	if tx := s.db.Save(&user); tx.Error != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", tx.Error)
	}
	return &user, nil
}
