package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"campus-complaints/internal/database"
	"campus-complaints/internal/models"
	"campus-complaints/internal/storage"
	"campus-complaints/internal/util"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// NoReplyPlaceholder is stored when an admin update carries an empty reply.
const NoReplyPlaceholder = "No reply provided."

// SubmittedAtLayout renders the creation label, e.g. "14/10/2026, 3:04:05 pm".
const SubmittedAtLayout = "02/01/2006, 3:04:05 pm"

// ComplaintService governs create, list, update and delete over complaints.
type ComplaintService struct {
	DB          *gorm.DB
	Attachments storage.Attachments
	Categories  []string
	Location    *time.Location
	Log         zerolog.Logger

	now func() time.Time
}

func NewComplaintService(db *gorm.DB, attachments storage.Attachments, categories []string, loc *time.Location, log zerolog.Logger) *ComplaintService {
	if loc == nil {
		loc = time.UTC
	}
	return &ComplaintService{
		DB:          db,
		Attachments: attachments,
		Categories:  categories,
		Location:    loc,
		Log:         log,
		now:         time.Now,
	}
}

type CreateInput struct {
	Title       string
	Category    string
	Description string
	Email       string
	Anonymous   bool
}

// Create stores a new complaint owned by owner. The owning reference is kept
// even for anonymous submissions; only the displayed submitter and the
// contact email are hidden.
func (s *ComplaintService) Create(ctx context.Context, owner *models.User, in CreateInput, photo *multipart.FileHeader) (*models.Complaint, error) {
	if owner == nil {
		return nil, ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Email = strings.TrimSpace(in.Email)

	if err := util.ValidateRequired(
		[2]string{"title", in.Title},
		[2]string{"category", in.Category},
		[2]string{"description", in.Description},
	); err != nil {
		return nil, invalid(err)
	}
	if utf8.RuneCountInString(in.Title) > 200 {
		return nil, &ValidationError{Msg: "Title must be at most 200 characters"}
	}
	if err := util.ValidateCategory(in.Category, s.Categories); err != nil {
		return nil, invalid(err)
	}
	if !in.Anonymous {
		if err := util.ValidateEmail(in.Email); err != nil {
			return nil, invalid(err)
		}
	}

	c := models.Complaint{
		Submitter:   owner.Name,
		UserID:      owner.ID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Status:      models.StatusOpen,
		SubmittedAt: s.now().In(s.Location).Format(SubmittedAtLayout),
	}
	if in.Anonymous {
		c.Submitter = models.AnonymousSubmitter
	} else if in.Email != "" {
		email := in.Email
		c.Email = &email
	}

	if photo != nil && s.Attachments != nil {
		name, err := s.Attachments.Save(photo)
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, &ValidationError{Msg: "Photo is too large"}
		case errors.Is(err, storage.ErrExtNotAllowed):
			return nil, &ValidationError{Msg: "Photo must be an image (jpg, png, gif or webp)"}
		case err != nil:
			return nil, fmt.Errorf("save attachment: %w", err)
		}
		c.Photo = &name
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := database.NextSequence(tx, database.ComplaintSequence)
		if err != nil {
			return err
		}
		c.Number = n
		return tx.Create(&c).Error
	})
	if err != nil {
		if c.Photo != nil {
			s.removeAttachment(*c.Photo)
		}
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	s.Log.Info().Uint("number", c.Number).Uint("user_id", owner.ID).Bool("anonymous", in.Anonymous).Msg("complaint created")
	return &c, nil
}

// List returns the complaints visible to viewer, newest number first:
// everything for admins, only owned complaints otherwise.
func (s *ComplaintService) List(ctx context.Context, viewer *models.User) ([]models.Complaint, error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	q := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if !viewer.IsAdmin() {
		q = q.Where("user_id = ?", viewer.ID)
	}

	var list []models.Complaint
	if err := q.Order("number DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return list, nil
}

// Get looks a complaint up by its public number.
func (s *ComplaintService) Get(ctx context.Context, number uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Where("number = ?", number).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get complaint %d: %w", number, err)
	}
	return &c, nil
}

// Update overwrites status and reply of complaint number. An unknown number
// is a no-op and reports found=false without an error. A status outside the
// enumeration leaves the stored status as it is.
func (s *ComplaintService) Update(ctx context.Context, number uint, status, reply string) (bool, error) {
	c, err := s.Get(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if st, err := models.ParseStatus(strings.TrimSpace(status)); err == nil {
		c.Status = st
	}
	c.Reply = strings.TrimSpace(reply)
	if c.Reply == "" {
		c.Reply = NoReplyPlaceholder
	}

	res := s.DB.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"status": c.Status,
		"reply":  c.Reply,
	})
	if res.Error != nil {
		return true, fmt.Errorf("update complaint %d: %w", number, res.Error)
	}
	if res.RowsAffected == 0 {
		// deleted since it was read
		return false, nil
	}
	s.Log.Info().Uint("number", number).Str("status", string(c.Status)).Msg("complaint updated")
	return true, nil
}

// Delete removes complaint number when viewer owns it or is an admin.
func (s *ComplaintService) Delete(ctx context.Context, viewer *models.User, number uint) error {
	if viewer == nil {
		return ErrForbidden
	}
	c, err := s.Get(ctx, number)
	if err != nil {
		return err
	}
	if !c.OwnedBy(viewer.ID) && !viewer.IsAdmin() {
		return ErrForbidden
	}

	if err := s.DB.WithContext(ctx).Delete(&models.Complaint{}, c.ID).Error; err != nil {
		return fmt.Errorf("delete complaint %d: %w", number, err)
	}
	if c.Photo != nil {
		s.removeAttachment(*c.Photo)
	}
	s.Log.Info().Uint("number", number).Uint("by", viewer.ID).Msg("complaint deleted")
	return nil
}

func (s *ComplaintService) removeAttachment(name string) {
	if s.Attachments == nil {
		return
	}
	if err := s.Attachments.Remove(name); err != nil {
		s.Log.Warn().Err(err).Str("photo", name).Msg("remove attachment failed")
	}
}

// Stats are aggregate counts over an already scoped list.
type Stats struct {
	Total      int
	Open       int
	InProgress int
	Resolved   int
}

func ComputeStats(list []models.Complaint) Stats {
	st := Stats{Total: len(list)}
	for i := range list {
		switch list[i].Status {
		case models.StatusOpen:
			st.Open++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusResolved:
			st.Resolved++
		}
	}
	return st
}

// SearchText is the lowercased haystack a term is matched against, the
// same string the dashboard puts in each row's data-search attribute.
func SearchText(c *models.Complaint) string {
	parts := []string{
		strconv.FormatUint(uint64(c.Number), 10),
		c.Title,
		c.Category,
		c.Description,
		c.Submitter,
		string(c.Status),
		c.Reply,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Matches applies the dashboard filter: case-insensitive substring on the
// search text and, when status is non-empty, exact status equality.
func Matches(c *models.Complaint, term, status string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if status != "" && string(c.Status) != status {
		return false
	}
	return strings.Contains(SearchText(c), term)
}

// Filter keeps the complaints that match term and status, preserving order.
func Filter(list []models.Complaint, term, status string) []models.Complaint {
	if strings.TrimSpace(term) == "" && status == "" {
		return list
	}
	out := make([]models.Complaint, 0, len(list))
	for i := range list {
		if Matches(&list[i], term, status) {
			out = append(out, list[i])
		}
	}
	return out
}
