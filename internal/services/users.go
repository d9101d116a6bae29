package services

import (
	"fmt"
	"log"

	"github.com/quicktify/quicktify-api/internal/models"
	"gorm.io/gorm"
)

// CreateUser records an identity-provider account on first sign-in.
// Re-delivered events are tolerated: an existing row is left untouched.
func CreateUser(db *gorm.DB, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	user := models.User{UserID: userID, Email: email}
	err := db.Where(models.User{UserID: userID}).FirstOrCreate(&user).Error
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser fetches the user row for an identity-provider id.
func GetUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user row and every analysis and rating estimation
// owned by that user id, in one transaction. Rows of other users are not
// touched.
func DeleteUser(db *gorm.DB, userID string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Analysis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RatingEstimation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}

	log.Printf("Deleted user %s and all associated data", userID)
	return nil
}
