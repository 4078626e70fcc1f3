package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/johnnywrightiv/workout-tracker-sub000/pkg/events"
)

// TemplateDraft carries the validated, client-supplied fields of a template.
type TemplateDraft struct {
	Name      string
	Duration  int
	Notes     string
	Exercises []Exercise
}

// TemplateService runs owner-scoped template operations.
type TemplateService struct {
	repo      TemplateRepository
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo TemplateRepository, publisher Publisher, logger zerolog.Logger) *TemplateService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &TemplateService{repo: repo, publisher: publisher, now: time.Now, logger: logger}
}

// List returns every template owned by userID.
func (s *TemplateService) List(ctx context.Context, userID string) ([]Template, error) {
	templates, err := s.repo.ListTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []Template{}
	}
	return templates, nil
}

// Get fetches one template by id for its owner.
func (s *TemplateService) Get(ctx context.Context, userID, id string) (*Template, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	template, err := s.repo.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if template == nil || !BelongsTo(*template, userID) {
		return nil, ErrNotFound
	}
	return template, nil
}

// Create stores a new template owned by userID.
func (s *TemplateService) Create(ctx context.Context, userID string, draft TemplateDraft) (*Template, error) {
	now := s.now().UTC()
	template := draft.apply(Template{ID: NewID(), UserID: userID, CreatedAt: now}, now)
	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TemplateSaved, template)
	return &template, nil
}

// Replace overwrites a template as a whole document.
func (s *TemplateService) Replace(ctx context.Context, userID, id string, draft TemplateDraft) (*Template, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	stored, err := s.repo.ReplaceTemplate(ctx, draft.apply(Template{ID: id, UserID: userID}, s.now().UTC()))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	s.publish(ctx, events.TemplateUpdated, *stored)
	return stored, nil
}

// Delete removes a template owned by userID.
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	deleted, err := s.repo.DeleteTemplate(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.publish(ctx, events.TemplateDeleted, Template{ID: id, UserID: userID})
	return nil
}

func (s *TemplateService) publish(ctx context.Context, eventType string, t Template) {
	payload := events.TemplateChanged{
		TemplateID:    t.ID,
		UserID:        t.UserID,
		Name:          t.Name,
		ExerciseCount: len(t.Exercises),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, eventType, t.UserID, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Str("template_id", t.ID).Msg("publish event")
	}
}

func (d TemplateDraft) apply(t Template, now time.Time) Template {
	t.Name = d.Name
	t.Duration = d.Duration
	t.Notes = d.Notes
	t.Exercises = d.Exercises
	if t.Exercises == nil {
		t.Exercises = []Exercise{}
	}
	t.UpdatedAt = now
	return t
}
