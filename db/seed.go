// db/seed.go
package db

import (
	"context"
	"log"

	"musicschool_backend/models"

	"github.com/google/uuid"
)

// SeedDemoData fills empty tables with the demo catalogue and one account per
// role, so a fresh install has something to click on. No-op once any real
// data exists.
func (r *Repo) SeedDemoData(ctx context.Context) error {
	n, err := r.CountInstruments(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		demo := []models.Instrument{
			{Name: "Yamaha Piano Keyboard", Type: "Keyboard", Brand: "Yamaha", Condition: models.ConditionExcellent, Location: "Room A"},
			{Name: "Violin - Student Model", Type: "String", Brand: "Stentor", Condition: models.ConditionGood, Location: "Storage Room"},
			{Name: "Acoustic Guitar", Type: "Guitar", Brand: "Fender", Condition: models.ConditionGood, Location: "Room B"},
			{Name: "Saxophone", Type: "Woodwind", Brand: "Yamaha", Condition: models.ConditionFair, Location: "Storage Room"},
		}
		for i := range demo {
			demo[i].ID = uuid.NewString()
			demo[i].Status = models.StatusAvailable
			if err := r.DB.WithContext(ctx).Create(&demo[i]).Error; err != nil {
				return err
			}
		}
		log.Printf("seeded %d demo instruments", len(demo))
	}

	var users int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users == 0 {
		demo := []models.User{
			{ID: uuid.NewString(), Username: "admin@school.test", DisplayName: "Admin", Role: models.RoleAdmin},
			{ID: uuid.NewString(), Username: "teacher@school.test", DisplayName: "Teacher", Role: models.RoleTeacher},
			{ID: uuid.NewString(), Username: "thabo@school.test", DisplayName: "Thabo Ndlovu", Role: models.RoleStudent, StudentID: "S1"},
			{ID: uuid.NewString(), Username: "zanele@school.test", DisplayName: "Zanele Mthembu", Role: models.RoleStudent, StudentID: "S2"},
		}
		for i := range demo {
			if err := r.DB.WithContext(ctx).Create(&demo[i]).Error; err != nil {
				return err
			}
		}
		log.Printf("seeded %d demo users", len(demo))
	}
	return nil
}
