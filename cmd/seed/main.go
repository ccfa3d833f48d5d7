// Command seed fills the configured store with users and trips, so that the
// leaderboard has something to rank. It reads the same configuration as the
// server; SEED_FILE may point to a JSON file replacing the built-in sample.
// Users whose email is already registered are skipped.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/travelboard/internal/app"
	"github.com/patric-chuzhbe/travelboard/internal/config"
	"github.com/patric-chuzhbe/travelboard/internal/logger"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

type seedTrip struct {
	Country     string `json:"country" validate:"required"`
	PlaceName   string `json:"place_name"`
	Description string `json:"description"`
}

type seedUser struct {
	Username   string     `json:"username" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	ProfilePic string     `json:"profilePic"`
	Trips      []seedTrip `json:"trips" validate:"dive"`
}

type seedData struct {
	Users []seedUser `json:"users" validate:"dive"`
}

var sampleData = seedData{
	Users: []seedUser{
		{
			Username: "marta",
			Email:    "marta@example.com",
			Trips: []seedTrip{
				{Country: "France", PlaceName: "Paris"},
				{Country: "France", PlaceName: "Lyon"},
				{Country: "Spain", PlaceName: "Seville"},
			},
		},
		{
			Username: "kenji",
			Email:    "kenji@example.com",
			Trips: []seedTrip{
				{Country: "Italy", PlaceName: "Rome"},
			},
		},
		{
			Username: "lucia",
			Email:    "lucia@example.com",
			Trips: []seedTrip{
				{Country: "Peru", PlaceName: "Cusco"},
				{Country: "Chile", PlaceName: "Valparaiso"},
				{Country: "Bolivia", PlaceName: "La Paz"},
			},
		},
		{
			Username: "omar",
			Email:    "omar@example.com",
		},
	},
}

type store interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateTrip(ctx context.Context, trip *models.Trip) (string, error)
	GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error)
}

func main() {
	cfg, err := config.New(config.WithSigningKeyOptional(true))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("seed: %v", err)
	}

	data, err := loadSeedData(strings.TrimSpace(os.Getenv("SEED_FILE")))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectionTimeout*3)
	defer cancel()

	db, err := app.GetStorageByType(ctx, cfg)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	created, seedErr := seed(ctx, db, data)
	if err := db.Close(); err != nil {
		logger.Log.Errorln("closing the store", "error", err)
	}
	if seedErr != nil {
		log.Fatalf("seed: %v", seedErr)
	}

	logger.Log.Infoln("seed completed", "users_created", created, "users_total", len(data.Users))
	_ = logger.Sync()
}

func loadSeedData(fileName string) (seedData, error) {
	data := sampleData
	if fileName != "" {
		raw, err := os.ReadFile(fileName)
		if err != nil {
			return data, fmt.Errorf("in cmd/seed/main.go/loadSeedData(): error while `os.ReadFile()` calling: %w", err)
		}
		data = seedData{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return data, fmt.Errorf("in cmd/seed/main.go/loadSeedData(): error while `json.Unmarshal()` calling: %w", err)
		}
	}

	if err := validator.New().Struct(data); err != nil {
		return data, fmt.Errorf("in cmd/seed/main.go/loadSeedData(): error while `validator.Struct()` calling: %w", err)
	}

	return data, nil
}

// seed creates the missing users and reports how many users it created.
// Trips are written for every seeded user that has none yet, so a run that
// failed between a user and its trips is completed by the next one.
func seed(ctx context.Context, db store, data seedData) (int, error) {
	created := 0
	for _, record := range data.Users {
		var userID string
		existing, err := db.GetUserByEmail(ctx, record.Email)
		switch {
		case err == nil:
			userID = existing.ID
			trips, err := db.GetTripsByUser(ctx, userID)
			if err != nil {
				return created, fmt.Errorf("in cmd/seed/main.go/seed(): error while `db.GetTripsByUser()` calling: %w", err)
			}
			if len(trips) > 0 {
				logger.Log.Debugln("user already seeded, skipping", "email", record.Email)
				continue
			}
		case errors.Is(err, models.ErrNotFound):
			userID, err = db.CreateUser(ctx, &user.User{
				Username:       record.Username,
				Email:          record.Email,
				ProfilePicture: record.ProfilePic,
			})
			if err != nil {
				return created, fmt.Errorf("in cmd/seed/main.go/seed(): error while `db.CreateUser()` calling: %w", err)
			}
			created++
		default:
			return created, fmt.Errorf("in cmd/seed/main.go/seed(): error while `db.GetUserByEmail()` calling: %w", err)
		}

		for _, trip := range record.Trips {
			_, err := db.CreateTrip(ctx, &models.Trip{
				UserID:      userID,
				Country:     trip.Country,
				PlaceName:   trip.PlaceName,
				Description: trip.Description,
			})
			if err != nil {
				return created, fmt.Errorf("in cmd/seed/main.go/seed(): error while `db.CreateTrip()` calling: %w", err)
			}
		}
	}

	return created, nil
}
