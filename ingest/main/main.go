package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"storemonitor/common"
	"storemonitor/config"
	"storemonitor/database"
	"storemonitor/ingest"

	"github.com/apex/log"
)

var (
	statusFile   = flag.String("store_status", "store_status.csv", "CSV of store polls: store_id,status,timestamp_utc.")
	hoursFile    = flag.String("menu_hours", "menu_hours.csv", "CSV of business hours: store_id,day,start_time_local,end_time_local.")
	timezoneFile = flag.String("timezones", "timezones.csv", "CSV of store timezones: store_id,timezone_str.")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	common.SetLogLevel(cfg.LogLevel)

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to create database connection: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.EnsureTables(ctx); err != nil {
		log.Fatalf("Failed to ensure tables: %v", err)
	}

	summary, err := ingest.NewLoader(db).Load(ctx, ingest.Sources{
		Observations:  *statusFile,
		BusinessHours: *hoursFile,
		Timezones:     *timezoneFile,
	})
	log.WithFields(log.Fields{
		"store_activity":       summary.Observations,
		"store_business_hours": summary.BusinessHours,
		"store_timezone":       summary.Timezones,
	}).Info("Data loading completed")
	if err != nil {
		log.Errorf("Some data failed to load: %v", err)
		stop()
		db.Close()
		os.Exit(1)
	}
}
