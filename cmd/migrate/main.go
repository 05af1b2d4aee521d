package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"placemap/internal/config"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SeedRecord struct {
	ClientID  string
	PlaceDesc string
	Latitude  string
	Longitude string
}

func main() {
	seed := flag.String("seed", "", "Optional path to a CSV file of favorites to seed")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Connect to DB
	conn, err := pgx.Connect(context.Background(), cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	// Ensure schema exists
	err = createTablesIfNotExist(conn)
	if err != nil {
		fmt.Printf("Error creating tables: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Schema is up to date")

	if *seed == "" {
		return
	}

	fmt.Printf("Seeding favorites from file: %s\n", *seed)

	records, err := parseCSV(*seed)
	if err != nil {
		fmt.Printf("Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d records\n", len(records))

	err = insertRecords(conn, records)
	if err != nil {
		fmt.Printf("Error inserting records: %v\n", err)
		os.Exit(1)
	}

	err = verifySeed(conn, len(records))
	if err != nil {
		fmt.Printf("Error verifying seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully seeded %d records\n", len(records))
}

func createTablesIfNotExist(conn *pgx.Conn) error {
	query := `
	CREATE TABLE IF NOT EXISTS clients (
		client_id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients (client_id),
		category_name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS faved_locations (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients (client_id),
		place_desc TEXT NOT NULL,
		latitude VARCHAR(64) NOT NULL,
		longitude VARCHAR(64) NOT NULL,
		category_id UUID REFERENCES categories (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS visited_locations (
		id UUID PRIMARY KEY,
		client_id UUID NOT NULL REFERENCES clients (client_id),
		place_desc TEXT NOT NULL,
		latitude VARCHAR(64) NOT NULL,
		longitude VARCHAR(64) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS faved_locations_client_idx ON faved_locations (client_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS faved_locations_category_idx ON faved_locations (client_id, category_id);
	CREATE INDEX IF NOT EXISTS visited_locations_client_idx ON visited_locations (client_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS categories_client_idx ON categories (client_id, created_at DESC);
	`
	_, err := conn.Exec(context.Background(), query)
	return err
}

func parseCSV(filePath string) ([]SeedRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Skip header
	_, err = reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records []SeedRecord
	for {
		record, err := reader.Read()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < 4 {
			return nil, fmt.Errorf("invalid record length: %d, expected at least 4 columns", len(record))
		}

		if _, err := uuid.Parse(record[0]); err != nil {
			return nil, fmt.Errorf("invalid client id: %s", record[0])
		}

		records = append(records, SeedRecord{
			ClientID:  record[0],
			PlaceDesc: record[1],
			Latitude:  record[2],
			Longitude: record[3],
		})
	}

	return records, nil
}

func insertRecords(conn *pgx.Conn, records []SeedRecord) error {
	ctx := context.Background()

	// Register each seed client first so the foreign keys hold.
	for _, r := range records {
		_, err := conn.Exec(ctx,
			`INSERT INTO clients (client_id, created_at) VALUES ($1, $2) ON CONFLICT (client_id) DO NOTHING`,
			r.ClientID, time.Now().UTC())
		if err != nil {
			return err
		}
	}

	// Use CopyFrom for bulk insert
	_, err := conn.CopyFrom(
		ctx,
		pgx.Identifier{"faved_locations"},
		[]string{"id", "client_id", "place_desc", "latitude", "longitude", "created_at"},
		pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
			r := records[i]
			return []interface{}{uuid.NewString(), r.ClientID, r.PlaceDesc, r.Latitude, r.Longitude, time.Now().UTC()}, nil
		}),
	)
	return err
}

func verifySeed(conn *pgx.Conn, expectedCount int) error {
	var count int
	err := conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM faved_locations").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if count < expectedCount {
		return fmt.Errorf("record count mismatch: expected at least %d, got %d", expectedCount, count)
	}

	var sample string
	err = conn.QueryRow(context.Background(), "SELECT place_desc FROM faved_locations LIMIT 1").Scan(&sample)
	if err != nil {
		return fmt.Errorf("failed to check sample record: %w", err)
	}

	fmt.Printf("Sample record: %s\n", sample)
	return nil
}
