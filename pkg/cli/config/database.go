package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/insper-comp/compiler-tester/pkg/repository/bundb"
)

type Database struct {
	dbType string
	dsn    string `masq:"secret"`
}

func (x *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-type",
			Usage:       "Database type [sqlite|postgres]",
			Category:    "Database",
			Destination: &x.dbType,
			Sources:     cli.EnvVars("COMPTEST_DB_TYPE"),
			Value:       "sqlite",
		},
		&cli.StringFlag{
			Name:        "db-dsn",
			Usage:       "Database DSN",
			Category:    "Database",
			Destination: &x.dsn,
			Sources:     cli.EnvVars("COMPTEST_DB_DSN"),
			Value:       "compiler-tester.db",
		},
	}
}

func (x Database) Open() (*bundb.Client, error) {
	return bundb.Open(x.dbType, x.dsn)
}

func (x Database) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("Type", x.dbType),
		slog.Int("DSN.len", len(x.dsn)),
	)
}
