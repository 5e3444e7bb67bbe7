package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare and seed the forecast records database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply the forecast_records schema",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "schema",
						Usage:   "Path to the schema SQL file",
						Value:   "./migrations/001_create_forecast_records.sql",
						EnvVars: []string{"SCHEMA_FILE"},
					},
				},
				Action: runMigrate,
			},
			{
				Name:  "records",
				Usage: "Seed forecast records from a sales history CSV",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with historical sales rows",
						Value:   "./data/sales_data.csv",
						EnvVars: []string{"SEED_DATA_FILE"},
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum rows to load (0 = all)",
						Value: 0,
					},
				},
				Action: runRecordSeeder,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func runMigrate(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	schema, err := os.ReadFile(c.String("schema"))
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), string(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied successfully!")
	return nil
}

const insertRecordSQL = `INSERT INTO forecast_records (
	id, forecast_date, category, region, inventory_level, units_ordered,
	price, discount, weather_condition, promotion, competitor_pricing,
	seasonality, epidemic, predicted_demand, actual_demand, created_at, request_id
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

func runRecordSeeder(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	filePath := c.String("file")
	limit := c.Int("limit")

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := indexColumns(header)

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Printf("Seeding forecast records from %s\n", filePath)

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if limit > 0 && count >= limit {
			break
		}

		forecastDate, err := time.Parse("2006-01-02", columns.get(row, "Date"))
		if err != nil {
			return fmt.Errorf("row %d: bad date: %w", count+1, err)
		}

		// Historical rows carry the observed demand, so it doubles as
		// the prediction baseline and the recorded actual.
		demand := parseFloat(columns.get(row, "Demand"))

		_, err = tx.ExecContext(ctx, insertRecordSQL,
			uuid.New(),
			forecastDate,
			columns.get(row, "Category"),
			columns.get(row, "Region"),
			parseInt(columns.get(row, "Inventory Level")),
			parseInt(columns.get(row, "Units Ordered")),
			parseFloat(columns.get(row, "Price")),
			parseFloat(columns.get(row, "Discount")),
			columns.get(row, "Weather Condition"),
			parseBool(columns.get(row, "Promotion")),
			parseFloat(columns.get(row, "Competitor Pricing")),
			columns.get(row, "Seasonality"),
			parseBool(columns.get(row, "Epidemic")),
			demand,
			demand,
			time.Now().UTC(),
			"seed",
		)
		if err != nil {
			return fmt.Errorf("row %d: insert failed: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Seeded %d forecast records successfully!\n", count)
	return nil
}

type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	idx := columnIndex{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func (ci columnIndex) get(row []string, name string) string {
	if i, ok := ci[name]; ok && i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	return false
}
