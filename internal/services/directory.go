package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/roles"
	"gorm.io/gorm"
)

// UserDirectory resolves notification recipients by role in the context
// of one case. It prefers the identity already bound to the case (its
// reporter, assigned approver, or investigation's investigator) and falls
// back to any active holder of the role.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) EmailForRole(ctx context.Context, c *models.Case, role roles.Role) (string, error) {
	switch role {
	case roles.Reporter:
		return d.emailByID(ctx, c.ReporterID.String())
	case roles.Approver:
		if c.ApproverID != nil {
			return d.emailByID(ctx, c.ApproverID.String())
		}
		return d.emailByRole(ctx, role)
	case roles.Investigator:
		var inv models.Investigation
		err := d.db.WithContext(ctx).Select("investigator_id").Where("case_id = ?", c.ID).First(&inv).Error
		if err == nil {
			return d.emailByID(ctx, inv.InvestigatorID.String())
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to look up investigator: %w", err)
		}
		return d.emailByRole(ctx, role)
	default:
		return d.emailByRole(ctx, role)
	}
}

func (d *UserDirectory) emailByID(ctx context.Context, userID string) (string, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Select("email").First(&user, "id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	return user.Email, nil
}

func (d *UserDirectory) emailByRole(ctx context.Context, role roles.Role) (string, error) {
	var user models.User
	err := d.db.WithContext(ctx).Select("email").
		Where("role = ?", role.String()).
		Order("created_at ASC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %s user: %w", role, err)
	}
	return user.Email, nil
}
