package database

import (
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var C *gorm.DB

func NewGorm() error {
	var err error

	dialector := postgres.Open(viper.GetString("database.dsn"))
	C, err = gorm.Open(dialector, &gorm.Config{
		// Duplicate key violations must surface as gorm.ErrDuplicatedKey so
		// the vote ledger can map them to an admission conflict.
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})

	return err
}
