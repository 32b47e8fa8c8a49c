package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"
	"skillgrid/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	eventsCacheKey  = "catalog:events"
	rewardsCacheKey = "catalog:rewards"

	eventExcerptLength = 160
)

// EventInput is the faculty form for a new catalog event.
type EventInput struct {
	Title       string               `json:"title" form:"title" validate:"notblank,max=200"`
	Date        string               `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Category    models.EventCategory `json:"category" form:"category" validate:"event_category"`
	Credits     int                  `json:"credits" form:"credits" validate:"gt=0"`
	Description string               `json:"description" form:"description"`
	SkillSplit  models.SkillMetrics  `json:"skill_split"`
}

// RewardInput is the faculty form for a new store item.
type RewardInput struct {
	Name        string                `json:"name" form:"name" validate:"notblank,max=200"`
	Cost        int                   `json:"cost" form:"cost" validate:"gt=0"`
	Category    models.RewardCategory `json:"category" form:"category" validate:"reward_category"`
	Description string                `json:"description" form:"description"`
}

type CatalogService struct {
	db       *gorm.DB
	uploader *Uploader
	events   *utils.TTLCache[[]models.Event]
	rewards  *utils.TTLCache[[]models.Reward]
}

func NewCatalogService(db *gorm.DB, uploader *Uploader, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		db:       db,
		uploader: uploader,
		events:   utils.NewTTLCache[[]models.Event](4, cacheTTL),
		rewards:  utils.NewTTLCache[[]models.Reward](4, cacheTTL),
	}
}

// EventPlaceholderImage is used when an event is posted without a picture.
func EventPlaceholderImage(title string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/600/400", url.PathEscape(title))
}

// ValidateEventInput checks field rules and that the skill split adds up to the credits.
func ValidateEventInput(in EventInput) error {
	if err := validateInput(in, "Please check the event details."); err != nil {
		return err
	}
	if total := in.SkillSplit.Total(); total != in.Credits {
		return apperr.Invalid("Skill points split must exactly match total credits.", map[string]string{
			"skill_split": fmt.Sprintf("split adds up to %d, expected %d", total, in.Credits),
		})
	}
	return nil
}

// CreateEvent validates and stores a new event. img may be nil.
func (s *CatalogService) CreateEvent(ctx context.Context, actor *models.User, in EventInput, img *ImageUpload) (*models.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := ValidateEventInput(in); err != nil {
		return nil, err
	}

	image := EventPlaceholderImage(in.Title)
	if img != nil {
		uploaded, err := s.upload(ctx, "events", img)
		if err != nil {
			return nil, err
		}
		image = uploaded
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Date:        in.Date,
		Category:    in.Category,
		Credits:     in.Credits,
		Status:      models.EventStatusUpcoming,
		Image:       image,
		Description: in.Description,
		SkillSplit:  in.SkillSplit,
	}
	if actor != nil {
		event.CreatedBy = actor.ID
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	s.events.Delete(eventsCacheKey)

	renderDescription(event)
	return event, nil
}

// DeleteEvent removes a catalog entry. Registrations already made keep their copies.
func (s *CatalogService) DeleteEvent(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Event not found.")
	}
	s.events.Delete(eventsCacheKey)
	return nil
}

// ListEvents returns the catalog ordered by date. The result is shared, callers must not modify it.
func (s *CatalogService) ListEvents(ctx context.Context) ([]models.Event, error) {
	if cached, ok := s.events.Get(eventsCacheKey); ok {
		return cached, nil
	}
	gen := s.events.Generation()

	var events []models.Event
	if err := s.db.WithContext(ctx).Order("date ASC, created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	for i := range events {
		renderDescription(&events[i])
	}
	// 查询期间若有增删，不写回旧结果
	s.events.SetIfCurrent(eventsCacheKey, events, gen)
	return events, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Event not found.")
		}
		return nil, err
	}
	renderDescription(&event)
	return &event, nil
}

// AddReward stores a new store item. img may be nil, in which case the item has no picture.
func (s *CatalogService) AddReward(ctx context.Context, in RewardInput, img *ImageUpload) (*models.Reward, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in, "Please check the reward details."); err != nil {
		return nil, err
	}

	var image string
	if img != nil {
		uploaded, err := s.upload(ctx, "rewards", img)
		if err != nil {
			return nil, err
		}
		image = uploaded
	}

	reward := &models.Reward{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Cost:        in.Cost,
		Category:    in.Category,
		Description: in.Description,
		Image:       image,
	}
	if err := s.db.WithContext(ctx).Create(reward).Error; err != nil {
		return nil, err
	}
	s.rewards.Delete(rewardsCacheKey)
	return reward, nil
}

func (s *CatalogService) DeleteReward(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reward{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Reward not found.")
	}
	s.rewards.Delete(rewardsCacheKey)
	return nil
}

// ListRewards returns the store ordered by cost. The result is shared, callers must not modify it.
func (s *CatalogService) ListRewards(ctx context.Context) ([]models.Reward, error) {
	if cached, ok := s.rewards.Get(rewardsCacheKey); ok {
		return cached, nil
	}
	gen := s.rewards.Generation()

	var rewards []models.Reward
	if err := s.db.WithContext(ctx).Order("cost ASC, name ASC").Find(&rewards).Error; err != nil {
		return nil, err
	}
	s.rewards.SetIfCurrent(rewardsCacheKey, rewards, gen)
	return rewards, nil
}

// RewardsFor lists the store with each item flagged affordable for the given balance.
// Nothing is reserved or deducted.
func (s *CatalogService) RewardsFor(ctx context.Context, totalCredits int) ([]models.Reward, error) {
	rewards, err := s.ListRewards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Reward, len(rewards))
	for i, r := range rewards {
		affordable := totalCredits >= r.Cost
		r.Affordable = &affordable
		out[i] = r
	}
	return out, nil
}

// renderDescription fills the rendered description and the list excerpt.
func renderDescription(e *models.Event) {
	e.DescriptionHTML = utils.RenderMarkdown(e.Description)
	e.Excerpt = utils.ExtractPlainText(e.DescriptionHTML, eventExcerptLength)
}

func (s *CatalogService) upload(ctx context.Context, prefix string, img *ImageUpload) (string, error) {
	if s.uploader == nil || s.uploader.Store == nil {
		return "", apperr.New(apperr.Transport, "Image storage is not configured.")
	}
	return s.uploader.Upload(ctx, prefix, img)
}
