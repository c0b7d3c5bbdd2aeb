package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"campus-complaints/internal/config"
	"campus-complaints/internal/database"
	"campus-complaints/internal/logger"
	"campus-complaints/internal/models"
	"campus-complaints/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  create-admin <username> <password> [name]   create an admin account
  promote <username>                          grant the admin role
  set-role <username> <student|admin>         assign a role
  complaints                                  list every complaint`

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn().Err(err).Msg("load .env")
	}
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("CC_CONFIG"))
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	// the server owns the log file; CLI lines go to the terminal
	logCfg := cfg.Log
	logCfg.File = ""
	lg, err := logger.New(logCfg)
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.AutoMigrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migrate database")
	}

	if err := run(context.Background(), db, os.Args[1:], os.Stdout); err != nil {
		lg.Fatal().Err(err).Str("command", os.Args[1]).Msg("admin command failed")
	}
}

func run(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	users := service.NewUserService(db)

	switch args[0] {
	case "create-admin":
		if len(args) < 3 {
			return errors.New("usage: admin create-admin <username> <password> [name]")
		}
		name := ""
		if len(args) > 3 {
			name = args[3]
		}
		created, err := users.EnsureAdmin(ctx, args[1], args[2], name)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if !created {
			return fmt.Errorf("user %q already exists; use promote", args[1])
		}
		fmt.Fprintf(out, "Admin %s has been created.\n", args[1])
	case "promote":
		if len(args) != 2 {
			return errors.New("usage: admin promote <username>")
		}
		if err := users.Promote(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s is now an admin.\n", args[1])
	case "set-role":
		if len(args) != 3 {
			return errors.New("usage: admin set-role <username> <student|admin>")
		}
		if err := users.SetRole(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s now has role %s.\n", args[1], args[2])
	case "complaints":
		return listComplaints(ctx, db, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
	return nil
}

func listComplaints(ctx context.Context, db *gorm.DB, out io.Writer) error {
	// listed with admin scope
	viewer := &models.User{Role: models.RoleAdmin}
	svc := service.NewComplaintService(db, nil, nil, nil, zerolog.Nop())
	list, err := svc.List(ctx, viewer)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATUS\tCATEGORY\tSUBMITTER\tSUBMITTED\tTITLE")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.Number, c.Status, c.Category, c.Submitter, c.SubmittedAt, c.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	st := service.ComputeStats(list)
	fmt.Fprintf(out, "\n%d total, %d open, %d in progress, %d resolved\n", st.Total, st.Open, st.InProgress, st.Resolved)
	return nil
}
