// Package admin binds every console mutation to a secure action with its
// validation rules and role allow-list.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/actions"
	"github.com/goliatone/go-folio/internal/audit"
	"github.com/goliatone/go-folio/internal/auth"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const defaultTimeout = 30 * time.Second

// ErrSelfDelete rejects an admin deleting their own account.
var ErrSelfDelete = errors.New("admin: you cannot delete your own account")

var (
	contentRoles = []domain.Role{domain.RoleAdmin, domain.RoleEditor}
	adminRoles   = []domain.Role{domain.RoleAdmin}
)

// Services are the domain services the actions delegate to.
type Services struct {
	Profile      profile.Service
	Skills       skills.Service
	Experience   experience.Service
	Projects     projects.Service
	Blog         blog.Service
	Testimonials testimonials.Service
	Media        media.Service
	Users        users.Service
	Locales      locales.Service
}

type Config struct {
	Recorder audit.Recorder
	Logger   interfaces.Logger
	Timeout  time.Duration
}

// Done is the empty result of actions that only report success.
type Done struct{}

type Actions struct {
	UpsertProfile *actions.SecureAction[UpsertProfileMessage, *profile.Profile]

	CreateSkill   *actions.SecureAction[CreateSkillMessage, *skills.Skill]
	UpdateSkill   *actions.SecureAction[UpdateSkillMessage, *skills.Skill]
	DeleteSkill   *actions.SecureAction[DeleteMessage, Done]
	ReorderSkills *actions.SecureAction[ReorderSkillsMessage, Done]

	CreateExperience *actions.SecureAction[CreateExperienceMessage, *experience.Experience]
	UpdateExperience *actions.SecureAction[UpdateExperienceMessage, *experience.Experience]
	DeleteExperience *actions.SecureAction[DeleteMessage, Done]

	CreateProject *actions.SecureAction[CreateProjectMessage, *projects.Project]
	UpdateProject *actions.SecureAction[UpdateProjectMessage, *projects.Project]
	DeleteProject *actions.SecureAction[DeleteMessage, Done]

	CreatePost    *actions.SecureAction[CreatePostMessage, *blog.Post]
	UpdatePost    *actions.SecureAction[UpdatePostMessage, *blog.Post]
	DeletePost    *actions.SecureAction[DeleteMessage, Done]
	PublishPost   *actions.SecureAction[IDMessage, *blog.Post]
	UnpublishPost *actions.SecureAction[IDMessage, *blog.Post]

	CreateTestimonial *actions.SecureAction[CreateTestimonialMessage, *testimonials.Testimonial]
	UpdateTestimonial *actions.SecureAction[UpdateTestimonialMessage, *testimonials.Testimonial]
	DeleteTestimonial *actions.SecureAction[DeleteMessage, Done]

	UploadMedia    *actions.SecureAction[UploadMediaMessage, *media.Asset]
	UpdateMediaAlt *actions.SecureAction[UpdateMediaAltMessage, *media.Asset]
	DeleteMedia    *actions.SecureAction[DeleteMessage, Done]

	CreateUser       *actions.SecureAction[CreateUserMessage, *users.User]
	UpdateUserRole   *actions.SecureAction[UpdateUserRoleMessage, *users.User]
	UpdateUserStatus *actions.SecureAction[UpdateUserStatusMessage, *users.User]
	ChangePassword   *actions.SecureAction[ChangePasswordMessage, Done]
	DeleteUser       *actions.SecureAction[DeleteMessage, Done]

	CreateLocale *actions.SecureAction[CreateLocaleMessage, *locales.Locale]
	UpdateLocale *actions.SecureAction[UpdateLocaleMessage, *locales.Locale]
}

func build[M actions.Message, R any](cfg Config, name, resource string, roles []domain.Role, id func(M, R) string, exec actions.Func[M, R]) *actions.SecureAction[M, R] {
	return actions.New(name, exec,
		actions.WithRoles[M, R](roles...),
		actions.WithRecorder[M, R](cfg.Recorder),
		actions.WithLogger[M, R](cfg.Logger),
		actions.WithTimeout[M, R](cfg.Timeout),
		actions.WithResource[M, R](resource, id),
	)
}

func deleteID(msg DeleteMessage, _ Done) string { return msg.ID.String() }

func idOf(msg IDMessage, _ *blog.Post) string { return msg.ID.String() }

func NewActions(svc Services, cfg Config) *Actions {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	a := &Actions{}

	a.UpsertProfile = build(cfg, "profile.upsert", "profile", contentRoles,
		func(_ UpsertProfileMessage, p *profile.Profile) string {
			return resultID(p, func(p *profile.Profile) uuid.UUID { return p.ID })
		},
		func(ctx context.Context, _ auth.Session, msg UpsertProfileMessage) (*profile.Profile, error) {
			return svc.Profile.Upsert(ctx, msg.request())
		})

	a.CreateSkill = build(cfg, "skill.create", "skill", contentRoles,
		func(_ CreateSkillMessage, s *skills.Skill) string {
			return resultID(s, func(s *skills.Skill) uuid.UUID { return s.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateSkillMessage) (*skills.Skill, error) {
			return svc.Skills.Create(ctx, skills.CreateSkillRequest{
				Category:     msg.Category,
				Level:        msg.Level,
				Icon:         msg.Icon,
				Position:     msg.Position,
				Translations: msg.Translations,
			})
		})
	a.UpdateSkill = build(cfg, "skill.update", "skill", contentRoles,
		func(msg UpdateSkillMessage, _ *skills.Skill) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateSkillMessage) (*skills.Skill, error) {
			return svc.Skills.Update(ctx, skills.UpdateSkillRequest{
				ID:           msg.ID,
				Category:     msg.Category,
				Level:        msg.Level,
				Icon:         msg.Icon,
				Position:     msg.Position,
				Translations: msg.Translations,
			})
		})
	a.DeleteSkill = build(cfg, "skill.delete", "skill", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Skills.Delete(ctx, msg.ID)
		})
	a.ReorderSkills = build(cfg, "skill.reorder", "skill", contentRoles, nil,
		func(ctx context.Context, _ auth.Session, msg ReorderSkillsMessage) (Done, error) {
			return Done{}, svc.Skills.Reorder(ctx, msg.IDs)
		})

	a.CreateExperience = build(cfg, "experience.create", "experience", contentRoles,
		func(_ CreateExperienceMessage, e *experience.Experience) string {
			return resultID(e, func(e *experience.Experience) uuid.UUID { return e.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateExperienceMessage) (*experience.Experience, error) {
			start, end := msg.dates()
			return svc.Experience.Create(ctx, experience.CreateExperienceRequest{
				Company:        msg.Company,
				CompanyURL:     msg.CompanyURL,
				LogoURL:        msg.LogoURL,
				EmploymentType: msg.EmploymentType,
				StartDate:      start,
				EndDate:        end,
				Position:       msg.Position,
				Translations:   msg.Translations,
			})
		})
	a.UpdateExperience = build(cfg, "experience.update", "experience", contentRoles,
		func(msg UpdateExperienceMessage, _ *experience.Experience) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateExperienceMessage) (*experience.Experience, error) {
			start, end := msg.dates()
			return svc.Experience.Update(ctx, experience.UpdateExperienceRequest{
				ID:             msg.ID,
				Company:        msg.Company,
				CompanyURL:     msg.CompanyURL,
				LogoURL:        msg.LogoURL,
				EmploymentType: msg.EmploymentType,
				StartDate:      start,
				EndDate:        end,
				Position:       msg.Position,
				Translations:   msg.Translations,
			})
		})
	a.DeleteExperience = build(cfg, "experience.delete", "experience", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Experience.Delete(ctx, msg.ID)
		})

	a.CreateProject = build(cfg, "project.create", "project", contentRoles,
		func(_ CreateProjectMessage, p *projects.Project) string {
			return resultID(p, func(p *projects.Project) uuid.UUID { return p.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateProjectMessage) (*projects.Project, error) {
			return svc.Projects.Create(ctx, projects.CreateProjectRequest{
				Slug:         msg.Slug,
				Status:       msg.Status,
				CoverURL:     msg.CoverURL,
				RepoURL:      msg.RepoURL,
				LiveURL:      msg.LiveURL,
				Technologies: msg.Technologies,
				Featured:     msg.Featured,
				Position:     msg.Position,
				Translations: msg.Translations,
			})
		})
	a.UpdateProject = build(cfg, "project.update", "project", contentRoles,
		func(msg UpdateProjectMessage, _ *projects.Project) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateProjectMessage) (*projects.Project, error) {
			return svc.Projects.Update(ctx, projects.UpdateProjectRequest{
				ID:           msg.ID,
				Slug:         msg.Slug,
				Status:       msg.Status,
				CoverURL:     msg.CoverURL,
				RepoURL:      msg.RepoURL,
				LiveURL:      msg.LiveURL,
				Technologies: msg.Technologies,
				Featured:     msg.Featured,
				Position:     msg.Position,
				Translations: msg.Translations,
			})
		})
	a.DeleteProject = build(cfg, "project.delete", "project", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Projects.Delete(ctx, msg.ID)
		})

	a.CreatePost = build(cfg, "post.create", "post", contentRoles,
		func(_ CreatePostMessage, p *blog.Post) string {
			return resultID(p, func(p *blog.Post) uuid.UUID { return p.ID })
		},
		func(ctx context.Context, session auth.Session, msg CreatePostMessage) (*blog.Post, error) {
			author := session.UserID
			return svc.Blog.Create(ctx, blog.CreatePostRequest{
				Slug:         msg.Slug,
				Status:       msg.Status,
				PublishAt:    msg.PublishAt,
				CoverURL:     msg.CoverURL,
				Tags:         msg.Tags,
				AuthorID:     &author,
				Translations: msg.Translations,
			})
		})
	a.UpdatePost = build(cfg, "post.update", "post", contentRoles,
		func(msg UpdatePostMessage, _ *blog.Post) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdatePostMessage) (*blog.Post, error) {
			return svc.Blog.Update(ctx, blog.UpdatePostRequest{
				ID:           msg.ID,
				Slug:         msg.Slug,
				Status:       msg.Status,
				PublishAt:    msg.PublishAt,
				CoverURL:     msg.CoverURL,
				Tags:         msg.Tags,
				Translations: msg.Translations,
			})
		})
	a.DeletePost = build(cfg, "post.delete", "post", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Blog.Delete(ctx, msg.ID)
		})
	a.PublishPost = build(cfg, "post.publish", "post", contentRoles, idOf,
		func(ctx context.Context, _ auth.Session, msg IDMessage) (*blog.Post, error) {
			return svc.Blog.Publish(ctx, msg.ID)
		})
	a.UnpublishPost = build(cfg, "post.unpublish", "post", contentRoles, idOf,
		func(ctx context.Context, _ auth.Session, msg IDMessage) (*blog.Post, error) {
			return svc.Blog.Unpublish(ctx, msg.ID)
		})

	a.CreateTestimonial = build(cfg, "testimonial.create", "testimonial", contentRoles,
		func(_ CreateTestimonialMessage, t *testimonials.Testimonial) string {
			return resultID(t, func(t *testimonials.Testimonial) uuid.UUID { return t.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateTestimonialMessage) (*testimonials.Testimonial, error) {
			return svc.Testimonials.Create(ctx, testimonials.CreateTestimonialRequest{
				AuthorName:   msg.AuthorName,
				AvatarURL:    msg.AvatarURL,
				Company:      msg.Company,
				Rating:       msg.Rating,
				Position:     msg.Position,
				Published:    msg.Published,
				Translations: msg.Translations,
			})
		})
	a.UpdateTestimonial = build(cfg, "testimonial.update", "testimonial", contentRoles,
		func(msg UpdateTestimonialMessage, _ *testimonials.Testimonial) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateTestimonialMessage) (*testimonials.Testimonial, error) {
			return svc.Testimonials.Update(ctx, testimonials.UpdateTestimonialRequest{
				ID:           msg.ID,
				AuthorName:   msg.AuthorName,
				AvatarURL:    msg.AvatarURL,
				Company:      msg.Company,
				Rating:       msg.Rating,
				Position:     msg.Position,
				Published:    msg.Published,
				Translations: msg.Translations,
			})
		})
	a.DeleteTestimonial = build(cfg, "testimonial.delete", "testimonial", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Testimonials.Delete(ctx, msg.ID)
		})

	a.UploadMedia = build(cfg, "media.upload", "media", contentRoles,
		func(_ UploadMediaMessage, asset *media.Asset) string {
			return resultID(asset, func(a *media.Asset) uuid.UUID { return a.ID })
		},
		func(ctx context.Context, session auth.Session, msg UploadMediaMessage) (*media.Asset, error) {
			uploader := session.UserID
			return svc.Media.Upload(ctx, media.UploadRequest{
				Filename:   msg.Filename,
				Content:    msg.Content,
				AltText:    msg.AltText,
				UploadedBy: &uploader,
			})
		})
	a.UpdateMediaAlt = build(cfg, "media.alt", "media", contentRoles,
		func(msg UpdateMediaAltMessage, _ *media.Asset) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateMediaAltMessage) (*media.Asset, error) {
			return svc.Media.UpdateAlt(ctx, msg.ID, msg.AltText)
		})
	a.DeleteMedia = build(cfg, "media.delete", "media", contentRoles, deleteID,
		func(ctx context.Context, _ auth.Session, msg DeleteMessage) (Done, error) {
			return Done{}, svc.Media.Delete(ctx, msg.ID)
		})

	a.CreateUser = build(cfg, "user.create", "user", adminRoles,
		func(_ CreateUserMessage, u *users.User) string {
			return resultID(u, func(u *users.User) uuid.UUID { return u.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateUserMessage) (*users.User, error) {
			return svc.Users.Create(ctx, users.CreateUserRequest{
				Email:    msg.Email,
				Name:     msg.Name,
				Password: msg.Password,
				Role:     domain.ParseRole(msg.Role),
			})
		})
	a.UpdateUserRole = build(cfg, "user.role", "user", adminRoles,
		func(msg UpdateUserRoleMessage, _ *users.User) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateUserRoleMessage) (*users.User, error) {
			return svc.Users.UpdateRole(ctx, msg.ID, domain.ParseRole(msg.Role))
		})
	a.UpdateUserStatus = build(cfg, "user.status", "user", adminRoles,
		func(msg UpdateUserStatusMessage, _ *users.User) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateUserStatusMessage) (*users.User, error) {
			return svc.Users.UpdateStatus(ctx, msg.ID, domain.ParseUserStatus(msg.Status))
		})
	a.ChangePassword = build(cfg, "user.password", "user", adminRoles,
		func(msg ChangePasswordMessage, _ Done) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg ChangePasswordMessage) (Done, error) {
			return Done{}, svc.Users.ChangePassword(ctx, msg.ID, msg.Password)
		})
	a.DeleteUser = build(cfg, "user.delete", "user", adminRoles, deleteID,
		func(ctx context.Context, session auth.Session, msg DeleteMessage) (Done, error) {
			if msg.ID == session.UserID {
				return Done{}, ErrSelfDelete
			}
			return Done{}, svc.Users.Delete(ctx, msg.ID)
		})

	a.CreateLocale = build(cfg, "locale.create", "locale", adminRoles,
		func(_ CreateLocaleMessage, l *locales.Locale) string {
			return resultID(l, func(l *locales.Locale) uuid.UUID { return l.ID })
		},
		func(ctx context.Context, _ auth.Session, msg CreateLocaleMessage) (*locales.Locale, error) {
			return svc.Locales.Create(ctx, locales.CreateLocaleRequest{
				Code:       msg.Code,
				Name:       msg.Name,
				NativeName: msg.NativeName,
				Direction:  msg.Direction,
				IsDefault:  msg.IsDefault,
				IsActive:   msg.IsActive,
				Position:   msg.Position,
			})
		})
	a.UpdateLocale = build(cfg, "locale.update", "locale", adminRoles,
		func(msg UpdateLocaleMessage, _ *locales.Locale) string { return msg.ID.String() },
		func(ctx context.Context, _ auth.Session, msg UpdateLocaleMessage) (*locales.Locale, error) {
			return svc.Locales.Update(ctx, msg.ID, locales.UpdateLocaleRequest{
				Code:       msg.Code,
				Name:       msg.Name,
				NativeName: msg.NativeName,
				Direction:  msg.Direction,
				IsDefault:  msg.IsDefault,
				IsActive:   msg.IsActive,
				Position:   msg.Position,
			})
		})

	return a
}

// resultID returns the id of a non-nil result, or "" for failed runs.
func resultID[T any](record *T, id func(*T) uuid.UUID) string {
	if record == nil {
		return ""
	}
	return id(record).String()
}
