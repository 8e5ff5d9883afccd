package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/database"
	"github.com/toroprop/toro-api/internal/jobs"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
	"github.com/toroprop/toro-api/pkg/logger"
	"gorm.io/gorm"
)

// toroctl runs the billing routines and maintenance tasks from the command
// line, against the same database the API serves.
func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "toroctl",
		Short: "Toro rental management CLI",
	}

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		generateCmd(),
		accrueCmd(),
		importCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Environment)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a small development dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return seed(cmd.Context(), db)
		},
	}
}

func generateCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate monthly payment obligations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}

			svc := services.NewBillingService(repository.NewUnitOfWork(db), cfg)
			result, err := svc.GenerateMonthlyObligations(cmd.Context(), period)
			if err != nil {
				return err
			}

			fmt.Printf("period=%s created=%d skipped=%d\n", result.Period, result.Created, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "target period (YYYY-MM), defaults to the current month")
	return cmd
}

func accrueCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "accrue",
		Short: "Recompute late fees on overdue payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}

			svc := services.NewBillingService(repository.NewUnitOfWork(db), cfg)
			result, err := svc.AccrueLateFees(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("updated=%d total_late_fee=%s dry_run=%t\n", result.Updated, result.TotalLateFee.StringFixed(2), result.DryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Import master data from an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			repos := repository.NewRepositories(db)
			worker := jobs.NewWorker(1)
			defer worker.Shutdown()
			auditSvc := services.NewAuditService(db, worker)

			svc := services.NewImportService(repos, auditSvc)
			result, err := svc.ImportMasterData(cmd.Context(), file, "cli", "toroctl")
			if err != nil {
				return err
			}

			fmt.Printf("departments=%d tenants=%d contracts=%d skipped=%d\n",
				result.DepartmentsCreated, result.TenantsCreated, result.ContractsCreated, result.SkippedRows)
			for _, msg := range result.Errors {
				fmt.Println("  " + msg)
			}
			return nil
		},
	}
}

func seed(ctx context.Context, db *gorm.DB) error {
	now := time.Now().UTC()

	departments := []models.Department{
		{Alias: "A-101", Address: "Av. Rivadavia 1234, Piso 1", PropertyType: models.PropertyTypeApartment, Status: models.DepartmentStatusVacant, StatusSince: now},
		{Alias: "A-102", Address: "Av. Rivadavia 1234, Piso 1", PropertyType: models.PropertyTypeApartment, Status: models.DepartmentStatusVacant, StatusSince: now},
		{Alias: "LOCAL-1", Address: "Av. Rivadavia 1234, PB", PropertyType: models.PropertyTypeCommercial, Status: models.DepartmentStatusVacant, StatusSince: now},
	}
	for i := range departments {
		if err := db.WithContext(ctx).Create(&departments[i]).Error; err != nil {
			return err
		}
	}

	nationalID := "30123456"
	email := "maria@example.com"
	phone := "+54 11 5555-0001"
	tenant := models.Tenant{
		FullName:       "María González",
		NationalID:     &nationalID,
		Email:          &email,
		Phone:          &phone,
		ContactChannel: models.ContactChannelWhatsApp,
		Status:         models.TenantStatusActive,
	}
	if err := db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return err
	}

	rent := decimal.NewFromInt(250000)
	contract := models.Contract{
		DepartmentID: departments[0].ID,
		TenantID:     tenant.ID,
		StartDate:    now.AddDate(0, -2, 0),
		EndDate:      now.AddDate(2, 0, 0),
		InitialRent:  rent,
		CurrentRent:  rent,
		Status:       models.ContractStatusActive,
	}
	if err := db.WithContext(ctx).Create(&contract).Error; err != nil {
		return err
	}

	if err := db.WithContext(ctx).Model(&departments[0]).
		Updates(map[string]interface{}{"status": models.DepartmentStatusRented, "status_since": now}).Error; err != nil {
		return err
	}

	fmt.Println("seed data inserted")
	return nil
}
