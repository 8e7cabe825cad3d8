// Package roles holds the static role catalogue and the startup routine
// that materializes one authorization group per role.
package roles

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ohse-platform/incident-backend/internal/models"
	"gorm.io/gorm"
)

type Role string

const (
	Reporter     Role = "reporter"
	Approver     Role = "approver"
	Investigator Role = "investigator"
	GOHSETeam    Role = "gohse_team"
	GOHSEManager Role = "gohse_manager"
	Observer     Role = "observer"
)

// Catalogue is the fixed set of platform roles, in display order.
var Catalogue = []Role{Reporter, Approver, Investigator, GOHSETeam, GOHSEManager, Observer}

func (r Role) String() string { return string(r) }

// Parse maps a stored role string to a catalogue Role.
func Parse(s string) (Role, error) {
	for _, r := range Catalogue {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// EnsureGroups creates an authorization group for every catalogue role that
// does not already have one. Called once at startup.
func EnsureGroups(db *gorm.DB) error {
	for _, role := range Catalogue {
		var group models.Group
		err := db.Where("name = ?", string(role)).First(&group).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up group %q: %w", role, err)
		}
		if err := db.Create(&models.Group{Name: string(role)}).Error; err != nil {
			return fmt.Errorf("failed to create group %q: %w", role, err)
		}
		slog.Info("authorization group created", "role", string(role))
	}
	return nil
}
