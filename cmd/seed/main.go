package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aivory/dental-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedUsers(context.Background(), pool, 25); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	log.Println("seed complete")
}

type doctorSeed struct {
	name       string
	email      string
	phone      string
	speciality string
	bio        string
	gender     string
}

var curatedDoctors = []doctorSeed{
	{
		name:       "Dr. Sarah Johnson",
		email:      "sarah.johnson@aivory.com",
		phone:      "+1 (555) 123-4567",
		speciality: "General Dentistry",
		bio:        "With over 15 years of experience, Dr. Johnson specializes in preventive care and cosmetic dentistry, helping patients achieve their best smile.",
		gender:     "FEMALE",
	},
	{
		name:       "Dr. Michael Chen",
		email:      "michael.chen@aivory.com",
		phone:      "+1 (555) 234-5678",
		speciality: "Orthodontics",
		bio:        "Dr. Chen is an expert in orthodontics and teeth alignment, using the latest technology to create beautiful, healthy smiles.",
		gender:     "MALE",
	},
	{
		name:       "Dr. Emily Rodriguez",
		email:      "emily.rodriguez@aivory.com",
		phone:      "+1 (555) 345-6789",
		speciality: "Pediatric Dentistry",
		bio:        "Specializing in children's dental care, Dr. Rodriguez creates a comfortable and fun environment for young patients.",
		gender:     "FEMALE",
	},
	{
		name:       "Dr. James Wilson",
		email:      "james.wilson@aivory.com",
		phone:      "+1 (555) 456-7890",
		speciality: "Cosmetic Dentistry",
		bio:        "Dr. Wilson is passionate about cosmetic dentistry, offering services like teeth whitening, veneers, and smile makeovers.",
		gender:     "MALE",
	},
	{
		name:       "Dr. Lisa Patel",
		email:      "lisa.patel@aivory.com",
		phone:      "+1 (555) 567-8901",
		speciality: "Endodontics",
		bio:        "As an endodontic specialist, Dr. Patel focuses on root canal treatments and saving natural teeth with advanced techniques.",
		gender:     "FEMALE",
	},
	{
		name:       "Dr. David Martinez",
		email:      "david.martinez@aivory.com",
		phone:      "+1 (555) 678-9012",
		speciality: "Periodontics",
		bio:        "Dr. Martinez specializes in gum health and dental implants, helping patients maintain healthy foundations for their teeth.",
		gender:     "MALE",
	},
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool) error {
	log.Printf("seeding %d curated doctors", len(curatedDoctors))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Only remove doctors no appointment references yet
	if _, err := tx.Exec(ctx, `
		DELETE FROM doctors
		WHERE id NOT IN (SELECT DISTINCT doctor_id FROM appointments)
	`); err != nil {
		return err
	}

	for _, d := range curatedDoctors {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, email, phone, image_url, speciality, bio, gender, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, '/logo.png', $5, $6, $7, true, now(), now())
		`, uuid.NewString(), d.name, d.email, d.phone, d.speciality, d.bio, d.gender)
		if err != nil {
			return err
		}
		log.Printf("created doctor: %s", d.name)
	}

	return tx.Commit(ctx)
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d demo users", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		authID := "demo-" + gofakeit.Username()

		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, auth_id, first_name, last_name, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (auth_id) DO NOTHING
		`, uuid.New(), authID, first, last, gofakeit.Email())
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("users seeded")
	return nil
}
