// Package migrations embeds the device store schema into the binary.
//
// Importing this package for its side effect registers the files with the
// database package:
//
//	import _ "github.com/achomutovskij/deviceservice/migrations"
package migrations

import (
	"embed"

	"github.com/achomutovskij/deviceservice/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
