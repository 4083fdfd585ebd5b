package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/admin"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/testimonials"
)

func (api *AdminAPI) registerProfileRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "profile")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, _ *http.Request) (any, error) {
		return api.services.Profile.Get(ctx)
	}))
	mux.HandleFunc("PUT "+root, run(api.actions.UpsertProfile, http.StatusOK, nil))
}

func (api *AdminAPI) registerSkillRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "skills")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, _ *http.Request) (any, error) {
		return api.services.Skills.List(ctx)
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Skills.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreateSkill, http.StatusCreated, nil))
	mux.HandleFunc("POST "+root+"/reorder", run(api.actions.ReorderSkills, http.StatusOK, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdateSkill, http.StatusOK,
		pathID(func(msg *admin.UpdateSkillMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteSkill, http.StatusNoContent, deleteOf("skill")))
}

func (api *AdminAPI) registerExperienceRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "experience")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, _ *http.Request) (any, error) {
		return api.services.Experience.List(ctx)
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Experience.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreateExperience, http.StatusCreated, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdateExperience, http.StatusOK,
		pathID(func(msg *admin.UpdateExperienceMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteExperience, http.StatusNoContent, deleteOf("experience")))
}

func (api *AdminAPI) registerProjectRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "projects")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, r *http.Request) (any, error) {
		query := r.URL.Query()
		items, total, err := api.services.Projects.List(ctx, projects.ListOptions{
			Status:       domain.Status(query.Get("status")),
			FeaturedOnly: parseBoolQuery(query.Get("featured"), false),
			Limit:        parseIntQuery(r, "limit", 0),
			Offset:       parseIntQuery(r, "offset", 0),
		})
		if err != nil {
			return nil, err
		}
		return listResponse[*projects.Project]{Items: items, Total: total}, nil
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Projects.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreateProject, http.StatusCreated, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdateProject, http.StatusOK,
		pathID(func(msg *admin.UpdateProjectMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteProject, http.StatusNoContent, deleteOf("project")))
}

func (api *AdminAPI) registerPostRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "posts")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, r *http.Request) (any, error) {
		query := r.URL.Query()
		items, total, err := api.services.Blog.List(ctx, blog.ListOptions{
			Status: domain.Status(query.Get("status")),
			Tag:    query.Get("tag"),
			Limit:  parseIntQuery(r, "limit", 0),
			Offset: parseIntQuery(r, "offset", 0),
		})
		if err != nil {
			return nil, err
		}
		return listResponse[*blog.Post]{Items: items, Total: total}, nil
	}))
	mux.HandleFunc("GET "+root+"/tags", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		return api.services.Blog.Tags(ctx, domain.Status(r.URL.Query().Get("status")))
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Blog.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreatePost, http.StatusCreated, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdatePost, http.StatusOK,
		pathID(func(msg *admin.UpdatePostMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeletePost, http.StatusNoContent, deleteOf("post")))
	mux.HandleFunc("POST "+root+"/{id}/publish", run(api.actions.PublishPost, http.StatusOK, transition("post.publish")))
	mux.HandleFunc("POST "+root+"/{id}/unpublish", run(api.actions.UnpublishPost, http.StatusOK, transition("post.unpublish")))
}

func (api *AdminAPI) registerTestimonialRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "testimonials")
	mux.HandleFunc("GET "+root, api.read(func(ctx context.Context, r *http.Request) (any, error) {
		items, err := api.services.Testimonials.List(ctx, parseBoolQuery(r.URL.Query().Get("published"), false))
		if err != nil {
			return nil, err
		}
		return listResponse[*testimonials.Testimonial]{Items: items, Total: len(items)}, nil
	}))
	mux.HandleFunc("GET "+root+"/{id}", api.read(func(ctx context.Context, r *http.Request) (any, error) {
		id, err := requestID(r)
		if err != nil {
			return nil, err
		}
		return api.services.Testimonials.Get(ctx, id)
	}))
	mux.HandleFunc("POST "+root, run(api.actions.CreateTestimonial, http.StatusCreated, nil))
	mux.HandleFunc("PUT "+root+"/{id}", run(api.actions.UpdateTestimonial, http.StatusOK,
		pathID(func(msg *admin.UpdateTestimonialMessage, id uuid.UUID) { msg.ID = id })))
	mux.HandleFunc("DELETE "+root+"/{id}", run(api.actions.DeleteTestimonial, http.StatusNoContent, deleteOf("testimonial")))
}
