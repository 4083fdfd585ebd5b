package admin

import (
	"errors"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
)

const dateLayout = "2006-01-02"

var errIDRequired = errors.New("is required")

var requiredID = validation.By(func(value any) error {
	switch id := value.(type) {
	case uuid.UUID:
		if id == uuid.Nil {
			return errIDRequired
		}
	case *uuid.UUID:
		if id == nil || *id == uuid.Nil {
			return errIDRequired
		}
	}
	return nil
})

// DeleteMessage removes one record of Resource.
type DeleteMessage struct {
	Resource string    `json:"-"`
	ID       uuid.UUID `json:"id"`
}

func (m DeleteMessage) Type() string { return "admin." + m.Resource + ".delete" }

func (m DeleteMessage) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.ID, requiredID))
}

// IDMessage carries a single record id for state transitions.
type IDMessage struct {
	Kind string    `json:"-"`
	ID   uuid.UUID `json:"id"`
}

func (m IDMessage) Type() string { return "admin." + m.Kind }

func (m IDMessage) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.ID, requiredID))
}

type UpsertProfileMessage struct {
	Email           string                            `json:"email"`
	Phone           string                            `json:"phone"`
	Location        string                            `json:"location"`
	AvatarURL       string                            `json:"avatar_url"`
	ResumeURL       string                            `json:"resume_url"`
	Socials         map[string]string                 `json:"socials"`
	YearsExperience int                               `json:"years_experience"`
	Available       bool                              `json:"available"`
	Translations    []profile.ProfileTranslationInput `json:"translations"`
}

func (UpsertProfileMessage) Type() string { return "admin.profile.upsert" }

func (m UpsertProfileMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Length(0, 254)),
		validation.Field(&m.Phone, validation.Length(0, 40)),
		validation.Field(&m.YearsExperience, validation.Min(0), validation.Max(80)),
		validation.Field(&m.Translations, validation.Required),
	)
}

func (m UpsertProfileMessage) request() profile.UpsertProfileRequest {
	return profile.UpsertProfileRequest{
		Email:           m.Email,
		Phone:           m.Phone,
		Location:        m.Location,
		AvatarURL:       m.AvatarURL,
		ResumeURL:       m.ResumeURL,
		Socials:         m.Socials,
		YearsExperience: m.YearsExperience,
		Available:       m.Available,
		Translations:    m.Translations,
	}
}

type SkillFields struct {
	Category     string                         `json:"category"`
	Level        int                            `json:"level"`
	Icon         string                         `json:"icon"`
	Position     int                            `json:"position"`
	Translations []skills.SkillTranslationInput `json:"translations"`
}

func (f *SkillFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Category, validation.Required, validation.Length(1, 64)),
		validation.Field(&f.Level, validation.Min(skills.MinLevel), validation.Max(skills.MaxLevel)),
		validation.Field(&f.Icon, validation.Length(0, 120)),
	}
}

type CreateSkillMessage struct {
	SkillFields
}

func (CreateSkillMessage) Type() string { return "admin.skill.create" }

func (m CreateSkillMessage) Validate() error {
	f := m.SkillFields
	return validation.ValidateStruct(&f, append(f.rules(), validation.Field(&f.Translations, validation.Required))...)
}

type UpdateSkillMessage struct {
	ID uuid.UUID `json:"id"`
	SkillFields
}

func (UpdateSkillMessage) Type() string { return "admin.skill.update" }

func (m UpdateSkillMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.SkillFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type ReorderSkillsMessage struct {
	IDs []uuid.UUID `json:"ids"`
}

func (ReorderSkillsMessage) Type() string { return "admin.skill.reorder" }

func (m ReorderSkillsMessage) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.IDs, validation.Required, validation.Each(requiredID)))
}

type ExperienceFields struct {
	Company        string                                  `json:"company"`
	CompanyURL     string                                  `json:"company_url"`
	LogoURL        string                                  `json:"logo_url"`
	EmploymentType string                                  `json:"employment_type"`
	StartDate      string                                  `json:"start_date"`
	EndDate        string                                  `json:"end_date"`
	Position       int                                     `json:"position"`
	Translations   []experience.ExperienceTranslationInput `json:"translations"`
}

func (f *ExperienceFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Company, validation.Required, validation.Length(1, 160)),
		validation.Field(&f.EmploymentType, validation.In("", "full-time", "part-time", "contract", "freelance", "internship")),
		validation.Field(&f.StartDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&f.EndDate, validation.Date(dateLayout)),
	}
}

// dates parses the validated date strings. An empty end date means the role
// is current.
func (f ExperienceFields) dates() (time.Time, *time.Time) {
	start, _ := time.Parse(dateLayout, f.StartDate)
	if f.EndDate == "" {
		return start, nil
	}
	end, _ := time.Parse(dateLayout, f.EndDate)
	return start, &end
}

type CreateExperienceMessage struct {
	ExperienceFields
}

func (CreateExperienceMessage) Type() string { return "admin.experience.create" }

func (m CreateExperienceMessage) Validate() error {
	f := m.ExperienceFields
	return validation.ValidateStruct(&f, append(f.rules(), validation.Field(&f.Translations, validation.Required))...)
}

type UpdateExperienceMessage struct {
	ID uuid.UUID `json:"id"`
	ExperienceFields
}

func (UpdateExperienceMessage) Type() string { return "admin.experience.update" }

func (m UpdateExperienceMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.ExperienceFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type ProjectFields struct {
	Slug         string                             `json:"slug"`
	Status       string                             `json:"status"`
	CoverURL     string                             `json:"cover_url"`
	RepoURL      string                             `json:"repo_url"`
	LiveURL      string                             `json:"live_url"`
	Technologies []string                           `json:"technologies"`
	Featured     bool                               `json:"featured"`
	Position     int                                `json:"position"`
	Translations []projects.ProjectTranslationInput `json:"translations"`
}

func (f *ProjectFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Slug, validation.Length(0, 160)),
		validation.Field(&f.Status, validation.In("", "draft", "published", "archived")),
		validation.Field(&f.Technologies, validation.Length(0, 40), validation.Each(validation.Length(1, 60))),
	}
}

type CreateProjectMessage struct {
	ProjectFields
}

func (CreateProjectMessage) Type() string { return "admin.project.create" }

func (m CreateProjectMessage) Validate() error {
	f := m.ProjectFields
	return validation.ValidateStruct(&f, append(f.rules(), validation.Field(&f.Translations, validation.Required))...)
}

type UpdateProjectMessage struct {
	ID uuid.UUID `json:"id"`
	ProjectFields
}

func (UpdateProjectMessage) Type() string { return "admin.project.update" }

func (m UpdateProjectMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.ProjectFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type PostFields struct {
	Slug         string                      `json:"slug"`
	Status       string                      `json:"status"`
	PublishAt    *time.Time                  `json:"publish_at"`
	CoverURL     string                      `json:"cover_url"`
	Tags         []string                    `json:"tags"`
	Translations []blog.PostTranslationInput `json:"translations"`
}

func (f *PostFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Slug, validation.Length(0, 160)),
		validation.Field(&f.Status, validation.In("", "draft", "published", "scheduled", "archived")),
		validation.Field(&f.PublishAt, validation.When(f.Status == "scheduled", validation.Required)),
		validation.Field(&f.Tags, validation.Length(0, 20), validation.Each(validation.Length(1, 40))),
	}
}

type CreatePostMessage struct {
	PostFields
}

func (CreatePostMessage) Type() string { return "admin.post.create" }

func (m CreatePostMessage) Validate() error {
	f := m.PostFields
	return validation.ValidateStruct(&f, append(f.rules(), validation.Field(&f.Translations, validation.Required))...)
}

type UpdatePostMessage struct {
	ID uuid.UUID `json:"id"`
	PostFields
}

func (UpdatePostMessage) Type() string { return "admin.post.update" }

func (m UpdatePostMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.PostFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type TestimonialFields struct {
	AuthorName   string                                     `json:"author_name"`
	AvatarURL    string                                     `json:"avatar_url"`
	Company      string                                     `json:"company"`
	Rating       int                                        `json:"rating"`
	Position     int                                        `json:"position"`
	Published    bool                                       `json:"published"`
	Translations []testimonials.TestimonialTranslationInput `json:"translations"`
}

func (f *TestimonialFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.AuthorName, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.Company, validation.Length(0, 120)),
		validation.Field(&f.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	}
}

type CreateTestimonialMessage struct {
	TestimonialFields
}

func (CreateTestimonialMessage) Type() string { return "admin.testimonial.create" }

func (m CreateTestimonialMessage) Validate() error {
	f := m.TestimonialFields
	return validation.ValidateStruct(&f, append(f.rules(), validation.Field(&f.Translations, validation.Required))...)
}

type UpdateTestimonialMessage struct {
	ID uuid.UUID `json:"id"`
	TestimonialFields
}

func (UpdateTestimonialMessage) Type() string { return "admin.testimonial.update" }

func (m UpdateTestimonialMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.TestimonialFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type UploadMediaMessage struct {
	Filename string    `json:"filename"`
	AltText  string    `json:"alt_text"`
	Content  io.Reader `json:"-"`
}

func (UploadMediaMessage) Type() string { return "admin.media.upload" }

func (m UploadMediaMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&m.AltText, validation.Length(0, 300)),
		validation.Field(&m.Content, validation.NotNil),
	)
}

type UpdateMediaAltMessage struct {
	ID      uuid.UUID `json:"id"`
	AltText string    `json:"alt_text"`
}

func (UpdateMediaAltMessage) Type() string { return "admin.media.alt" }

func (m UpdateMediaAltMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, requiredID),
		validation.Field(&m.AltText, validation.Length(0, 300)),
	)
}

type CreateUserMessage struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (CreateUserMessage) Type() string { return "admin.user.create" }

func (m CreateUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, validation.Length(3, 254)),
		validation.Field(&m.Name, validation.Length(0, 120)),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&m.Role, validation.In("", "admin", "editor", "viewer")),
	)
}

type UpdateUserRoleMessage struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

func (UpdateUserRoleMessage) Type() string { return "admin.user.role" }

func (m UpdateUserRoleMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, requiredID),
		validation.Field(&m.Role, validation.Required, validation.In("admin", "editor", "viewer")),
	)
}

type UpdateUserStatusMessage struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (UpdateUserStatusMessage) Type() string { return "admin.user.status" }

func (m UpdateUserStatusMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, requiredID),
		validation.Field(&m.Status, validation.Required, validation.In("active", "pending", "suspended")),
	)
}

type ChangePasswordMessage struct {
	ID       uuid.UUID `json:"id"`
	Password string    `json:"password"`
}

func (ChangePasswordMessage) Type() string { return "admin.user.password" }

func (m ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, requiredID),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 72)),
	)
}

type LocaleFields struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Direction  string `json:"direction"`
	IsDefault  bool   `json:"is_default"`
	IsActive   bool   `json:"is_active"`
	Position   int    `json:"position"`
}

func (f *LocaleFields) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&f.Code, validation.Required, validation.Length(2, 35)),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&f.Direction, validation.In("", "ltr", "rtl")),
	}
}

type CreateLocaleMessage struct {
	LocaleFields
}

func (CreateLocaleMessage) Type() string { return "admin.locale.create" }

func (m CreateLocaleMessage) Validate() error {
	f := m.LocaleFields
	return validation.ValidateStruct(&f, f.rules()...)
}

type UpdateLocaleMessage struct {
	ID uuid.UUID `json:"id"`
	LocaleFields
}

func (UpdateLocaleMessage) Type() string { return "admin.locale.update" }

func (m UpdateLocaleMessage) Validate() error {
	if err := validation.Validate(m.ID, requiredID); err != nil {
		return validation.Errors{"id": err}
	}
	f := m.LocaleFields
	return validation.ValidateStruct(&f, f.rules()...)
}
