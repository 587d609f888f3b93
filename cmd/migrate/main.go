package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	appmigrations "github.com/wolfman30/leadgate/migrations"
)

// Migrations run as the schema owner, never as either runtime role.
func main() {
	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("MIGRATE_URL"))
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(os.Getenv("STORE_URL"))
	}
	if databaseURL == "" {
		log.Fatal("MIGRATE_URL or STORE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("db driver: %v", err)
	}

	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		log.Fatalf("source driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	// Check for force command: /bin/migrate force <version>
	if len(os.Args) >= 3 && os.Args[1] == "force" {
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid version: %v", err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force version: %v", err)
		}
		fmt.Printf("forced version to %d\n", version)
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate up: %v", err)
	}

	for _, rc := range roleCredentials() {
		if err := provisionRole(context.Background(), db, rc); err != nil {
			log.Fatalf("provision role %s: %v", rc.role, err)
		}
		fmt.Printf("role %s provisioned with %s on leads\n", rc.role, rc.privilege)
	}

	fmt.Println("migrations complete")
}

type roleCredential struct {
	role      string
	key       string
	privilege string // INSERT or SELECT
}

// roleCredentials returns the runtime roles whose keys are present in the
// environment. Role names follow STORE_RESTRICTED_ROLE / STORE_ELEVATED_ROLE.
func roleCredentials() []roleCredential {
	pairs := []struct{ roleEnv, defaultRole, keyEnv, privilege string }{
		{"STORE_RESTRICTED_ROLE", "lead_intake", "STORE_RESTRICTED_KEY", "INSERT"},
		{"STORE_ELEVATED_ROLE", "lead_admin", "STORE_ELEVATED_KEY", "SELECT"},
	}
	var out []roleCredential
	for _, p := range pairs {
		key := os.Getenv(p.keyEnv)
		if key == "" {
			continue
		}
		role := strings.TrimSpace(os.Getenv(p.roleEnv))
		if role == "" {
			role = p.defaultRole
		}
		out = append(out, roleCredential{role: role, key: key, privilege: p.privilege})
	}
	return out
}

type execQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const (
	roleExistsQuery = `SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)`
	createRoleQuery = `SELECT format('CREATE ROLE %I WITH LOGIN PASSWORD %L', $1::text, $2::text)`
	alterRoleQuery  = `SELECT format('ALTER ROLE %I WITH LOGIN PASSWORD %L', $1::text, $2::text)`

	// $1 role, $2 privilege, $3 policy clause.
	accessQuery = `SELECT
		format('GRANT %s ON leads TO %I', $2::text, $1::text),
		format('DROP POLICY IF EXISTS %I ON leads', 'leads_' || $1::text || '_' || lower($2::text)),
		format('CREATE POLICY %I ON leads FOR %s TO %I %s', 'leads_' || $1::text || '_' || lower($2::text), $2::text, $1::text, $3::text)`
)

// provisionRole creates or updates a runtime login role and gives it exactly
// one privilege on leads. The server quotes every identifier and literal.
func provisionRole(ctx context.Context, db execQueryer, rc roleCredential) error {
	clause := "USING (true)"
	switch rc.privilege {
	case "INSERT":
		clause = "WITH CHECK (true)"
	case "SELECT":
	default:
		return fmt.Errorf("unsupported privilege %q", rc.privilege)
	}

	var exists bool
	if err := db.QueryRowContext(ctx, roleExistsQuery, rc.role).Scan(&exists); err != nil {
		return fmt.Errorf("lookup role: %w", err)
	}

	roleQuery := alterRoleQuery
	if !exists {
		roleQuery = createRoleQuery
	}
	var roleStmt string
	if err := db.QueryRowContext(ctx, roleQuery, rc.role, rc.key).Scan(&roleStmt); err != nil {
		return fmt.Errorf("build role statement: %w", err)
	}
	if _, err := db.ExecContext(ctx, roleStmt); err != nil {
		return fmt.Errorf("apply role: %w", err)
	}

	var grant, dropPolicy, createPolicy string
	if err := db.QueryRowContext(ctx, accessQuery, rc.role, rc.privilege, clause).Scan(&grant, &dropPolicy, &createPolicy); err != nil {
		return fmt.Errorf("build access statements: %w", err)
	}
	for _, stmt := range []string{grant, dropPolicy, createPolicy} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply access: %w", err)
		}
	}
	return nil
}
