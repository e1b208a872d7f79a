package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"homeward/config"
	"homeward/internal/logger"
	. "homeward/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed loads development users and, when SEED_FILE_PATH is set, imports the
// property listings CSV exported from the county feed.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			FirstName: "Admin",
			LastName:  "User",
			Email:     "admin@example.com",
			IsAdmin:   true,
		},
		{
			FirstName: "Case",
			LastName:  "Worker",
			Email:     "caseworker@example.com",
			IsAdmin:   false,
		},
	}

	for _, user := range users {
		var existing User
		if err := db.First(&existing, "email = ?", user.Email).Error; err == nil {
			log.Info("User already exists", "email", user.Email)
			continue
		}
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "email", user.Email)
		}
	}

	if config.SeedFilePath == "" {
		log.Info("No seed file configured, skipping property import")
		return nil
	}

	return seedProperties(db, config.SeedFilePath, log)
}

// seedProperties reads the listing CSV. Expected columns:
// address,city,state,zip,price,bedrooms,bathrooms,square_feet,year_built,features
// where features is a semicolon separated list.
func seedProperties(db *gorm.DB, path string, log logger.Logger) error {
	log = log.Function("seedProperties")

	file, err := os.Open(path)
	if err != nil {
		return log.Err("failed to open seed file", err, "path", path)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Header row
	if _, err := reader.Read(); err != nil {
		return log.Err("failed to read seed file header", err, "path", path)
	}

	imported := 0
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return log.Err("failed to read seed file row", err, "path", path)
		}

		property, err := propertyFromRecord(record)
		if err != nil {
			log.Warn("Skipping malformed listing row", "error", err.Error())
			skipped++
			continue
		}

		var existing Property
		err = db.First(&existing, "address = ? AND city = ?", property.Address, property.City).Error
		if err == nil {
			skipped++
			continue
		}

		if err := db.Create(property).Error; err != nil {
			log.Er("failed to create property", err, "address", property.Address)
			skipped++
			continue
		}
		imported++
	}

	log.Info("Property import complete", "imported", imported, "skipped", skipped)
	return nil
}

func propertyFromRecord(record []string) (*Property, error) {
	if len(record) < 7 {
		return nil, fmt.Errorf("expected at least 7 columns, got %d", len(record))
	}

	price, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", record[4], err)
	}

	bedrooms, err := strconv.Atoi(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid bedrooms %q: %w", record[5], err)
	}

	bathrooms, err := decimal.NewFromString(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid bathrooms %q: %w", record[6], err)
	}

	property := &Property{
		Address:   record[0],
		City:      record[1],
		State:     record[2],
		Zip:       record[3],
		Price:     price,
		Bedrooms:  bedrooms,
		Bathrooms: bathrooms,
		Status:    PropertyActive,
	}

	if len(record) > 7 && record[7] != "" {
		squareFeet, err := strconv.Atoi(record[7])
		if err != nil {
			return nil, fmt.Errorf("invalid square feet %q: %w", record[7], err)
		}
		property.SquareFeet = &squareFeet
	}

	if len(record) > 8 && record[8] != "" {
		yearBuilt, err := strconv.Atoi(record[8])
		if err != nil {
			return nil, fmt.Errorf("invalid year built %q: %w", record[8], err)
		}
		property.YearBuilt = &yearBuilt
	}

	if len(record) > 9 && record[9] != "" {
		features := strings.Split(record[9], ";")
		for i := range features {
			features[i] = strings.TrimSpace(features[i])
		}
		property.Features = datatypes.NewJSONSlice(features)
	}

	return property, nil
}
