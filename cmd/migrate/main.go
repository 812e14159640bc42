// migrate aplica las migraciones goose del esquema del ledger.
//
// Uso: go run ./cmd/migrate [-cmd up|down|status] [-dir migrations]
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "comando: up|down|status")
	dir := flag.String("dir", "migrations", "directorio de migraciones goose")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		fmt.Fprintln(os.Stderr, "abrir conexión:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		fmt.Fprintln(os.Stderr, "dialecto goose:", err)
		os.Exit(1)
	}

	switch *cmd {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	default:
		fmt.Fprintln(os.Stderr, "comando desconocido:", *cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "goose %s: %v\n", *cmd, err)
		os.Exit(1)
	}
}
