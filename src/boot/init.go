package boot

import (
	"log"
	"time"
	"villas/src/db"
	"villas/src/lib"
	"villas/src/models"
	"villas/src/models/scopes"
	"villas/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Account{},
		&models.Property{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// stalePendingAge is how long a PENDING booking may sit before the sweep
// cancels it. Core flows create bookings CONFIRMED, so anything still PENDING
// past this window was abandoned.
const stalePendingAge = 24 * time.Hour

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(CancelStaleBookings, time.Hour)
	if err != nil {
		log.Printf("Error scheduling booking sweep: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled booking sweep: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

func CancelStaleBookings() {
	cutoff := time.Now().Add(-stalePendingAge)
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithStatus(string(types.BOOKING_PENDING)), scopes.CreatedBefore(cutoff)).
			Update("status", types.BOOKING_CANCELLED)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Cancelled %d stale pending bookings\n", result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while processing stale bookings: %s\n", err.Error())
	}
}
