// Package http exposes the portfolio over JSON.
//
// Admin routes mount under /admin/api and require a session cookie or bearer
// token:
//   - Auth: /auth/login, /auth/logout, /auth/me
//   - Content: /profile, /skills, /experience, /projects, /posts,
//     /posts/{id}/publish, /posts/{id}/unpublish, /testimonials
//   - Files: /media, /media/{id}
//   - Administration: /users, /locales, /audit
//   - Editor utilities: /preview
//
// Public routes mount under /api/{locale} (home, projects, posts, messages)
// next to /api/locales, /sitemap.xml, /media/ and /healthz.
//
// Host applications can register handlers on their own mux as needed.
package http
