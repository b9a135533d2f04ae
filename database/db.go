package database

import (
	"fmt"
	"regexp"
	"time"

	"invoiceflow/config"
	"invoiceflow/logger"
	"invoiceflow/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

var schemaName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidSchemaName reports whether name is safe to splice into search_path.
func ValidSchemaName(name string) bool {
	return schemaName.MatchString(name)
}

// zerologWriter routes gorm's logger through zerolog.
type zerologWriter struct {
	log zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

func Connect(cfg *config.Config) error {
	gl := gormlogger.New(zerologWriter{log: logger.WithComponent("gorm")}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gl})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	return nil
}

// MigratePublic migrates the tables shared by all tenants.
func MigratePublic() error {
	return DB.AutoMigrate(&models.ContactPerson{}, &models.Company{}, &models.User{})
}

// TenantSchemas lists every registered tenant schema.
func TenantSchemas() ([]string, error) {
	var schemas []string
	err := DB.Model(&models.User{}).Distinct().Order("schema_name").Pluck("schema_name", &schemas).Error
	return schemas, err
}
