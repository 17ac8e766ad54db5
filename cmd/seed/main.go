// Seeds a demo tenant with rooms and a few guests, then prints a dev session
// token for hitting the API. Safe to run repeatedly: existing rows are left
// alone.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelos/internal/adapters/auth"
	"hotelos/internal/adapters/observability"
	"hotelos/internal/domain"
	"hotelos/internal/shared"
	mysqlrepo "hotelos/internal/storage/mysql"
)

const demoHotel = "Demo Grand Hotel"

type seedRoom struct {
	number   string
	floor    int
	category string
	rate     domain.Money
}

func demoRooms() []seedRoom {
	var rooms []seedRoom
	categories := []struct {
		name string
		rate domain.Money
	}{
		{"standard", 2000},
		{"deluxe", 3500},
		{"suite", 8000}, // above the tax threshold
	}
	for floor := 1; floor <= 3; floor++ {
		for i := 1; i <= 5; i++ {
			cat := categories[(i-1)%len(categories)]
			rooms = append(rooms, seedRoom{
				number:   fmt.Sprintf("%d%02d", floor, i),
				floor:    floor,
				category: cat.name,
				rate:     cat.rate,
			})
		}
	}
	return rooms
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	tenantID, err := ensureTenant(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("seed tenant failed")
	}

	seeded := 0
	for _, r := range demoRooms() {
		res, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO rooms (tenant_id, room_number, floor_number, category, base_rate, status)
			 VALUES (?, ?, ?, ?, ?, 'available')`,
			tenantID, r.number, r.floor, r.category, int64(r.rate))
		if err != nil {
			log.Fatal().Err(err).Str("room", r.number).Msg("seed room failed")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	log.Info().Int64("tenant", tenantID).Int("new_rooms", seeded).Msg("rooms seeded")

	guests := []struct{ name, mobile string }{
		{"Asha Verma", "9876543210"},
		{"Rahul Nair", "9123456780"},
	}
	for _, g := range guests {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO guests (tenant_id, full_name, mobile) VALUES (?, ?, ?)`,
			tenantID, g.name, g.mobile); err != nil {
			log.Fatal().Err(err).Str("guest", g.name).Msg("seed guest failed")
		}
	}

	if cfg.JWTSecret != "" {
		tok, err := auth.NewVerifier(cfg.JWTSecret).Mint(domain.Identity{
			TenantID:  tenantID,
			UserID:    1,
			HotelName: demoHotel,
		}, 24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("mint dev token failed")
		}
		fmt.Printf("dev session token (24h):\n%s\n", tok)
	}

	log.Info().Msg("seeding completed")
}

func ensureTenant(ctx context.Context, db *sql.DB) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM tenants WHERE hotel_name = ? LIMIT 1`, demoHotel).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `INSERT INTO tenants (hotel_name) VALUES (?)`, demoHotel)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
