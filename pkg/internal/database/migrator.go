package database

import (
	"github.com/lunarfall/ballot/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Poll{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.Vote{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
