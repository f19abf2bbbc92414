// Package goodaideas is the GoodAIdeas client: a session-aware state store
// over a hosted or self-hosted backend, the app features built on it, and
// the goodaideas command line and HTTP front ends.
//
// Packages:
//
//   - pkg/remote: backend contract (auth, table queries, errors), with the
//     rest, sqlstore and remotetest implementations
//   - pkg/store: session, profile, settings, onboarding progress and notifications
//   - pkg/service: ideas, favorites, ratings, comments, onboarding, dashboard,
//     activity, saved prompts and settings sync
//   - pkg/persist: device-local persistence of settings (file, redis, memory)
//   - internal/database, internal/seed: schema and development data for the
//     self-hosted backend
//   - internal/handlers, internal/middleware: the JSON API behind 'goodaideas serve'
//   - internal/cmd: the goodaideas CLI
package goodaideas
