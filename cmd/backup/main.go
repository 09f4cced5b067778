package main

import (
	"context"
	"flag"
	"os"

	"github.com/Latacz1/notatnik-treningowy/internal/backup"
	"github.com/Latacz1/notatnik-treningowy/internal/config"
	"github.com/Latacz1/notatnik-treningowy/internal/db"
	"github.com/Latacz1/notatnik-treningowy/internal/docstore"
	"github.com/Latacz1/notatnik-treningowy/internal/logging"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// trainings documents google drive backup cmd

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	credentialsFile := flag.String("gd-creds", "", "google drive service account credentials json (overrides TRAININGS_DRIVE_CREDENTIALS)")
	keep := flag.Int("keep", 30, "number of newest backups to keep, older ones are deleted (0 keeps all)")
	list := flag.Bool("list", false, "only list existing backups")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx := context.Background()
	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		log.Fatalf("load secrets: %s", err)
	}

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.BackupLogsPath,
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        secrets.SentryDSN,
		SentryServerName: "trainings-backup",
	})
	defer closeLogs()

	log.Println("starting trainings backup ...")

	credentialsJson := []byte(secrets.DriveCredentials)
	if *credentialsFile != "" {
		credentialsJson, err = os.ReadFile(*credentialsFile)
		if err != nil {
			log.Fatalf("unable to read credentials file: %s", err)
		}
	}
	if len(credentialsJson) == 0 {
		log.Fatalln("google drive credentials not specified, use -gd-creds or TRAININGS_DRIVE_CREDENTIALS")
	}

	// the job is short lived, its metrics are not exposed
	metricsManager := metrics.NewManager("trainings", "backup", prometheus.NewRegistry())

	driveService, err := backup.NewDriveService(ctx, backup.DriveServiceParams{
		FolderName:     secrets.DriveBackupFolder,
		MetricsManager: metricsManager,
		ClientOptions:  []option.ClientOption{option.WithCredentialsJSON(credentialsJson)},
	})
	if err != nil {
		log.Fatalf("failed to create google drive backup service: %s", err)
	}

	if *list {
		files, err := driveService.List(ctx)
		if err != nil {
			log.Fatalf("list backups: %s", err)
		}
		for _, f := range files {
			log.Printf(" -- [%s]: %s (%s)", f.CreatedTime, f.Name, f.Id)
		}
		return
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: secrets.PostgresPassword,
	})
	if err != nil {
		log.Fatalf("failed to create new db pool: %s", err)
	}
	defer dbPool.Close()

	file, err := driveService.Backup(ctx, docstore.NewRepo(dbPool))
	if err != nil {
		log.Fatalf("backup failed: %s", err)
	}
	log.Printf("backup done: %s (%s)", file.Name, file.Id)

	if *keep > 0 {
		deleted, err := driveService.Prune(ctx, *keep)
		if err != nil {
			log.Errorf("prune old backups: %s", err)
			return
		}
		log.Printf("%d old backups deleted", deleted)
	}
}
