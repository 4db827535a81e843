package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// DATE_FORMAT is the wire format for check-in/check-out dates and blocked ranges.
const DATE_FORMAT = "2006-01-02"

// DISPLAY_DATE_FORMAT is used in confirmation emails.
const DISPLAY_DATE_FORMAT = "January 2, 2006"

const PROPERTIES_CACHE_KEY = "properties:list"

// PROPERTIES_CACHE_TTL is the read-through TTL on the property list, in seconds.
const PROPERTIES_CACHE_TTL = 60
