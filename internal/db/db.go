package db

import (
	"log"

	"skillgrid/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs migrations.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")
	return gdb, nil
}

// Migrate creates or updates all tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Registration{},
		&models.Reward{},
		&models.PointLog{},
		&models.Notification{},
	)
}

// SeedCatalog inserts the starter events and rewards into empty catalogs.
func SeedCatalog(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&models.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Events already seeded, skipping")
	} else {
		for _, e := range seedEvents() {
			if err := gdb.Create(&e).Error; err != nil {
				log.Printf("Failed to create event %s: %v", e.Title, err)
				return err
			}
		}
		log.Println("Initial events created successfully")
	}

	if err := gdb.Model(&models.Reward{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Rewards already seeded, skipping")
		return nil
	}
	for _, r := range seedRewards() {
		if err := gdb.Create(&r).Error; err != nil {
			log.Printf("Failed to create reward %s: %v", r.Name, err)
			return err
		}
	}
	log.Println("Initial rewards created successfully")
	return nil
}

func evenSplit(credits int) models.SkillMetrics {
	n := credits / 5
	return models.SkillMetrics{
		Leadership:    n,
		Creativity:    n,
		Teamwork:      n + credits%5,
		Technical:     n,
		Communication: n,
	}
}

func seedEvents() []models.Event {
	return []models.Event{
		{
			ID: "e1", Title: "AI Innovation Hackathon", Date: "2024-06-15",
			Category: models.CategoryHackathon, Credits: 100, Status: models.EventStatusUpcoming,
			Image:       "https://picsum.photos/id/2/600/400",
			Description: "Build the future of AI in this 24-hour intense coding marathon.",
			SkillSplit:  evenSplit(100),
		},
		{
			ID: "e2", Title: "Leadership Summit", Date: "2024-05-20",
			Category: models.CategorySeminar, Credits: 50, Status: models.EventStatusCompleted,
			Image:       "https://picsum.photos/id/3/600/400",
			Description: "Learn from industry leaders about managing teams effectively.",
			SkillSplit:  evenSplit(50),
		},
		{
			ID: "e3", Title: "Creative Writing Workshop", Date: "2024-05-10",
			Category: models.CategoryWorkshop, Credits: 30, Status: models.EventStatusCompleted,
			Image:       "https://picsum.photos/id/4/600/400",
			Description: "Unleash your inner storyteller.",
			SkillSplit:  evenSplit(30),
		},
		{
			ID: "e4", Title: "Robotics Club Meetup", Date: "2024-06-22",
			Category: models.CategoryClubActivity, Credits: 20, Status: models.EventStatusUpcoming,
			Image:       "https://picsum.photos/id/6/600/400",
			Description: "Weekly meetup to work on the Mars Rover project.",
			SkillSplit:  evenSplit(20),
		},
	}
}

func seedRewards() []models.Reward {
	return []models.Reward{
		{ID: "r1", Name: "University Hoodie", Cost: 500, Category: models.RewardCategoryMerch, Description: "Premium cotton hoodie with logo.", Image: "https://picsum.photos/id/18/300/300"},
		{ID: "r2", Name: "Food Lab", Cost: 100, Category: models.RewardCategoryVoucher, Description: "$10 cafeteria voucher."},
		{ID: "r3", Name: "Extra Lab Access", Cost: 300, Category: models.RewardCategoryAcademic, Description: "24/7 Access to the innovation lab for a week.", Image: "https://picsum.photos/id/26/300/300"},
		{ID: "r4", Name: "Conference Ticket", Cost: 1000, Category: models.RewardCategoryAcademic, Description: "Full access to the annual TechConf.", Image: "https://picsum.photos/id/30/300/300"},
	}
}
