// internal/domain/feedback/service.go
package feedback

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrNotFeedbackOwner = errors.New("feedback does not belong to user")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

// Service handles customer feedback
type Service struct {
	db *gorm.DB
}

// NewService creates a new feedback service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateRequest represents a feedback submission
type CreateRequest struct {
	OrderID *uint  `json:"order_id"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Create stores a new feedback entry from a user
func (s *Service) Create(userID uint, req *CreateRequest) (*Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	fb := &Feedback{
		UserID:  userID,
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.db.Create(fb).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return fb, nil
}

// ListForUser returns the user's own feedback entries
func (s *Service) ListForUser(userID uint) ([]Feedback, error) {
	var items []Feedback
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return items, nil
}

// ListAll returns all feedback for admins
func (s *Service) ListAll(page, limit int) ([]Feedback, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&Feedback{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	var items []Feedback
	err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return items, total, nil
}

// Respond records an admin response on a feedback entry
func (s *Service) Respond(feedbackID uint, response string) (*Feedback, error) {
	fb, err := s.getByID(feedbackID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(fb).Update("response", response).Error; err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}
	fb.Response = response
	return fb, nil
}

// Approve marks a feedback entry as approved for public display
func (s *Service) Approve(feedbackID uint) (*Feedback, error) {
	fb, err := s.getByID(feedbackID)
	if err != nil {
		return nil, err
	}
	if fb.IsApproved {
		return fb, nil
	}

	if err := s.db.Model(fb).Update("is_approved", true).Error; err != nil {
		return nil, fmt.Errorf("failed to approve feedback: %w", err)
	}
	fb.IsApproved = true
	return fb, nil
}

// AdminDelete removes any feedback entry regardless of owner
func (s *Service) AdminDelete(feedbackID uint) error {
	fb, err := s.getByID(feedbackID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(fb).Error; err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

func (s *Service) getByID(feedbackID uint) (*Feedback, error) {
	var fb Feedback
	if err := s.db.First(&fb, feedbackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return &fb, nil
}

// Delete removes a feedback entry, enforcing ownership
func (s *Service) Delete(userID, feedbackID uint) error {
	fb, err := s.getByID(feedbackID)
	if err != nil {
		return err
	}
	if fb.UserID != userID {
		return ErrNotFeedbackOwner
	}
	if err := s.db.Delete(fb).Error; err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

// AverageRating returns the mean rating across all feedback
func (s *Service) AverageRating() (float64, error) {
	var avg *float64
	err := s.db.Model(&Feedback{}).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
